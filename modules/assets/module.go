package assets

import (
	"embed"

	"github.com/assetdeck/assetdeck/modules/assets/infrastructure/persistence"
	"github.com/assetdeck/assetdeck/modules/assets/presentation/controllers"
	"github.com/assetdeck/assetdeck/modules/assets/services"
	"github.com/assetdeck/assetdeck/pkg/application"
	"github.com/assetdeck/assetdeck/pkg/configuration"
)

//go:embed infrastructure/persistence/schema/assets-schema.sql
var MigrationFiles embed.FS

func NewModule() application.Module {
	return &Module{}
}

type Module struct {
}

func (m *Module) Register(app application.Application) error {
	conf := configuration.Use()

	app.Migrations().RegisterSchema(&MigrationFiles)

	assetRepo := persistence.NewAssetRepository()
	app.RegisterServices(
		services.NewAssetService(assetRepo, app.EventPublisher()),
		services.NewImportService(
			persistence.NewImportSourceRepository(),
			persistence.NewFieldMappingRepository(),
			persistence.NewImportJobRepository(),
			assetRepo,
			app.EventPublisher(),
			app.DB(),
			app.Logger(),
			conf.Import,
			conf.UploadsPath,
		),
	)
	app.RegisterControllers(
		controllers.NewImportController(app),
		controllers.NewAssetController(app),
		controllers.NewHealthController(),
	)
	return nil
}

func (m *Module) Name() string {
	return "assets"
}
