// Package app wires the catalog client, the local scanner and the session
// controller into one context object shared by the CLI and the console.
package app

import (
	"context"
	"net/http"

	"github.com/jingkaihe/skillhub/pkg/catalog"
	"github.com/jingkaihe/skillhub/pkg/config"
	"github.com/jingkaihe/skillhub/pkg/controller"
	"github.com/jingkaihe/skillhub/pkg/logger"
	"github.com/jingkaihe/skillhub/pkg/skills"
	"github.com/jingkaihe/skillhub/pkg/types/console"
	skilltypes "github.com/jingkaihe/skillhub/pkg/types/skills"
	"github.com/pkg/errors"
)

// App is the explicit application context
type App struct {
	Config     config.Config
	Catalog    *catalog.Client
	Scanner    *skills.Scanner
	Controller *controller.Controller
}

// Option is a function that configures an App
type Option func(*App)

// WithCatalogClient replaces the catalog client built from config
func WithCatalogClient(c *catalog.Client) Option {
	return func(a *App) {
		a.Catalog = c
	}
}

// WithControllerOptions forwards options to the session controller
func WithControllerOptions(opts ...controller.Option) Option {
	return func(a *App) {
		a.Controller = controller.New(launcherFor(a.Config), opts...)
	}
}

// New builds the application context from cfg
func New(cfg config.Config, opts ...Option) *App {
	a := &App{
		Config: cfg,
		Catalog: catalog.NewClient(
			cfg.Catalog.BaseURL,
			cfg.Catalog.APIKey,
			catalog.WithHTTPClient(&http.Client{Timeout: cfg.Catalog.Timeout}),
			catalog.WithRetryConfig(cfg.Catalog.Retry),
		),
		Scanner:    skills.NewScanner(cfg.Workspace),
		Controller: controller.New(launcherFor(cfg)),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func launcherFor(cfg config.Config) controller.Launcher {
	return controller.Launcher{
		Workspace:   cfg.Workspace,
		Interpreter: cfg.Agent.Interpreter,
		Script:      cfg.Agent.Script,
		APIKey:      cfg.AgentAPIKey(),
		Env:         cfg.Agent.Env,
	}
}

// AllSkills browses the remote catalog. Failures are logged and degrade to
// an empty result so callers can keep rendering.
func (a *App) AllSkills(ctx context.Context, query string) []skilltypes.SkillRecord {
	records, err := a.Catalog.Browse(ctx, query)
	if err != nil {
		logger.G(ctx).WithError(err).WithField("query", query).Warn("catalog browse failed")
		return []skilltypes.SkillRecord{}
	}
	return records
}

// SearchSkills runs a catalog search and surfaces failures to the caller
func (a *App) SearchSkills(ctx context.Context, query catalog.Query) ([]skilltypes.SkillRecord, error) {
	return a.Catalog.Search(ctx, query)
}

// InstalledSkills lists the skills present in the workspace
func (a *App) InstalledSkills(ctx context.Context) ([]skilltypes.SkillRecord, error) {
	return a.Scanner.Scan(ctx)
}

// FindSkill looks a skill up by id, name or GitHub URL, first among the
// cached popular listing and then through a catalog search.
func (a *App) FindSkill(ctx context.Context, ref string) (skilltypes.SkillRecord, error) {
	if isGitHubURL(ref) {
		return skilltypes.SkillRecord{
			ID:        ref,
			Name:      ref,
			GitHubURL: ref,
			Source:    skilltypes.SourceRemote,
		}, nil
	}

	match := func(records []skilltypes.SkillRecord) (skilltypes.SkillRecord, bool) {
		for _, r := range records {
			if r.ID == ref || r.Name == ref {
				return r, true
			}
		}
		return skilltypes.SkillRecord{}, false
	}

	if r, ok := match(a.Catalog.Cached()); ok {
		return r, nil
	}
	records, err := a.Catalog.Search(ctx, catalog.Query{Q: ref})
	if err != nil {
		return skilltypes.SkillRecord{}, err
	}
	if r, ok := match(records); ok {
		return r, nil
	}
	return skilltypes.SkillRecord{}, errors.Errorf("skill '%s' not found in catalog", ref)
}

// Install asks the agent to download skill into the workspace
func (a *App) Install(ctx context.Context, skill skilltypes.SkillRecord, sink console.Sink) error {
	instruction, err := a.Controller.InstallInstruction(skill)
	if err != nil {
		return err
	}
	return a.Controller.Run(ctx, instruction, sink)
}

// Run executes a free-form instruction
func (a *App) Run(ctx context.Context, instruction string, sink console.Sink) error {
	return a.Controller.Run(ctx, instruction, sink)
}

// SendFollowUp forwards text to the running agent
func (a *App) SendFollowUp(text string) error {
	return a.Controller.SendFollowUp(text)
}

// Close tears down any running session
func (a *App) Close() error {
	return a.Controller.Close()
}
