package modules

import (
	"github.com/assetdeck/assetdeck/modules/assets"
	"github.com/assetdeck/assetdeck/pkg/application"
)

var BuiltInModules = []application.Module{
	assets.NewModule(),
}

func Load(app application.Application, externalModules ...application.Module) error {
	for _, module := range externalModules {
		if err := module.Register(app); err != nil {
			return err
		}
	}
	return nil
}
