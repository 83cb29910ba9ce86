package injector

import (
	"projector/internal/assets"
	"projector/internal/config"
	"projector/internal/engine"
	"projector/internal/game"
	"projector/internal/log"
	"projector/internal/notify"
	"projector/internal/physics"
	"projector/internal/scenefile"
	"projector/internal/world"

	"github.com/google/wire"
)

// ConfigPath is the config file the app starts from.
type ConfigPath string

func ProvideConfig(path ConfigPath) (config.Config, error) {
	return config.Load(string(path))
}

// ProvideLogger builds the app logger. The cleanup flushes it.
func ProvideLogger(cfg config.Config) (*log.Logger, func()) {
	logger := log.New(log.ParseLevel(cfg.Log.Level))
	return logger, logger.Sync
}

func ProvidePhysics(cfg config.Config, logger log.Log) *physics.World {
	return physics.NewWorld(cfg.Physics, logger)
}

func ProvideWorld(renderer *world.Renderer, cfg config.Config) *world.World {
	return world.New(renderer, cfg.Physics)
}

func ProvideLoader(cfg config.Config) *scenefile.FileLoader {
	return scenefile.NewFileLoader(cfg.Scene.AssetDir)
}

var LogSet = wire.NewSet(
	ProvideLogger,
	wire.Bind(new(log.Log), new(*log.Logger)),
)

var SceneSet = wire.NewSet(
	notify.NewQueue,
	wire.Bind(new(notify.Notifier), new(*notify.Queue)),
	ProvidePhysics,
	wire.Bind(new(engine.Physics), new(*physics.World)),
	assets.NewCache,
	world.NewRenderer,
	wire.Bind(new(engine.Renderer), new(*world.Renderer)),
	ProvideWorld,
)

var FileSet = wire.NewSet(
	ProvideLoader,
	wire.Bind(new(scenefile.AssetLoader), new(*scenefile.FileLoader)),
	game.NewDropPrompter,
	wire.Bind(new(scenefile.AssetPrompter), new(*game.DropPrompter)),
	scenefile.NewImporter,
)
