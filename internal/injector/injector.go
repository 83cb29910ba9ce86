//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package injector

import (
	"projector/internal/editor"
	"projector/internal/game"

	"github.com/google/wire"
)

func InitializeGame(path ConfigPath) (*game.Game, func(), error) {
	wire.Build(ProvideConfig, LogSet, SceneSet, FileSet, editor.New, game.New)
	return nil, nil, nil
}
