package application

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"reflect"
	"sort"
	"strings"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/assetdeck/assetdeck/pkg/eventbus"
)

// Controller registers HTTP routes on the shared router.
type Controller interface {
	Key() string
	Register(r *mux.Router)
}

// Module wires its services, controllers and schema into the application.
type Module interface {
	Name() string
	Register(app Application) error
}

type Application interface {
	DB() *pgxpool.Pool
	EventPublisher() eventbus.EventBus
	Logger() *logrus.Logger
	Migrations() *SchemaRegistry
	RegisterServices(services ...interface{})
	Service(service interface{}) interface{}
	RegisterControllers(controllers ...Controller)
	Controllers() []Controller
	RegisterMiddleware(middleware ...mux.MiddlewareFunc)
	Middleware() []mux.MiddlewareFunc
}

type ApplicationOptions struct {
	Pool     *pgxpool.Pool
	EventBus eventbus.EventBus
	Logger   *logrus.Logger
}

func New(opts *ApplicationOptions) Application {
	return &application{
		pool:       opts.Pool,
		eventBus:   opts.EventBus,
		logger:     opts.Logger,
		services:   map[reflect.Type]interface{}{},
		migrations: &SchemaRegistry{},
	}
}

type application struct {
	pool        *pgxpool.Pool
	eventBus    eventbus.EventBus
	logger      *logrus.Logger
	services    map[reflect.Type]interface{}
	controllers []Controller
	middleware  []mux.MiddlewareFunc
	migrations  *SchemaRegistry
}

func (a *application) DB() *pgxpool.Pool {
	return a.pool
}

func (a *application) EventPublisher() eventbus.EventBus {
	return a.eventBus
}

func (a *application) Logger() *logrus.Logger {
	return a.logger
}

func (a *application) Migrations() *SchemaRegistry {
	return a.migrations
}

func (a *application) RegisterServices(services ...interface{}) {
	for _, service := range services {
		serviceType := reflect.TypeOf(service).Elem()
		a.services[serviceType] = service
	}
}

// Service looks a registered service up by example value, e.g.
// app.Service(services.ImportService{}).(*services.ImportService).
func (a *application) Service(service interface{}) interface{} {
	serviceType := reflect.TypeOf(service)
	svc, ok := a.services[serviceType]
	if !ok {
		panic(fmt.Sprintf("service %s not found", serviceType.Name()))
	}
	return svc
}

func (a *application) RegisterControllers(controllers ...Controller) {
	a.controllers = append(a.controllers, controllers...)
}

func (a *application) Controllers() []Controller {
	return a.controllers
}

func (a *application) RegisterMiddleware(middleware ...mux.MiddlewareFunc) {
	a.middleware = append(a.middleware, middleware...)
}

func (a *application) Middleware() []mux.MiddlewareFunc {
	return a.middleware
}

// SchemaRegistry collects embedded schema files from modules and applies them
// in registration order. Statements use IF NOT EXISTS so re-running is safe.
type SchemaRegistry struct {
	filesystems []*embed.FS
}

func (s *SchemaRegistry) RegisterSchema(fsys *embed.FS) {
	s.filesystems = append(s.filesystems, fsys)
}

func (s *SchemaRegistry) Apply(ctx context.Context, pool *pgxpool.Pool) error {
	for _, fsys := range s.filesystems {
		var files []string
		err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.HasSuffix(path, ".sql") {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return err
		}
		sort.Strings(files)
		for _, file := range files {
			ddl, err := fsys.ReadFile(file)
			if err != nil {
				return err
			}
			if _, err := pool.Exec(ctx, string(ddl)); err != nil {
				return fmt.Errorf("applying schema %s: %w", file, err)
			}
		}
	}
	return nil
}
