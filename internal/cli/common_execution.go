package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/reclaimops/wasteplan/internal/catalogue"
	"github.com/reclaimops/wasteplan/internal/config"
	"github.com/reclaimops/wasteplan/internal/engine"
	"github.com/reclaimops/wasteplan/internal/facility"
	"github.com/reclaimops/wasteplan/internal/logging"
	"github.com/reclaimops/wasteplan/internal/routecache"
	"github.com/reclaimops/wasteplan/internal/store"
)

// auditContext holds common context for audit logging within a command.
type auditContext struct {
	logger  logging.AuditLogger
	traceID string
	params  map[string]string
	start   time.Time
	command string
}

// newAuditContext creates a new audit context.
func newAuditContext(ctx context.Context, command string, params map[string]string) *auditContext {
	return &auditContext{
		logger:  logging.AuditLoggerFromContext(ctx),
		traceID: logging.TraceIDFromContext(ctx),
		params:  params,
		start:   time.Now(),
		command: command,
	}
}

// logFailure logs an audit entry for a failed operation.
func (a *auditContext) logFailure(ctx context.Context, err error) {
	entry := logging.NewAuditEntry(a.command, a.traceID).
		WithParameters(a.params).
		WithError(err.Error()).
		WithDuration(a.start)
	a.logger.Log(ctx, *entry)
}

// logSuccess logs an audit entry for a successful operation.
func (a *auditContext) logSuccess(ctx context.Context, count int, tonnes float64) {
	entry := logging.NewAuditEntry(a.command, a.traceID).
		WithParameters(a.params).
		WithSuccess(count, tonnes).
		WithDuration(a.start)
	a.logger.Log(ctx, *entry)
}

// loadCatalogue returns the material catalogue: the configured dataset when
// one is set, the built-in catalogue otherwise.
func loadCatalogue(ctx context.Context) (*catalogue.Catalogue, error) {
	log := logging.FromContext(ctx)

	path := config.CataloguePath()
	if path == "" {
		return catalogue.Default(), nil
	}

	cat, err := catalogue.Load(path)
	if err != nil {
		log.Error().Ctx(ctx).Err(err).Str("path", path).Msg("failed to load material catalogue")
		return nil, fmt.Errorf("loading catalogue: %w", err)
	}
	log.Debug().Ctx(ctx).Str("path", path).Int("stream_count", len(cat.Labels())).
		Msg("catalogue loaded from file")

	return cat, nil
}

// loadDirectory loads the facility/partner reference dataset.
func loadDirectory(ctx context.Context, cat *catalogue.Catalogue) (*facility.Directory, error) {
	log := logging.FromContext(ctx)

	path, err := config.FacilitiesPath()
	if err != nil {
		return nil, err
	}

	dir, err := facility.Load(path, cat)
	if err != nil {
		log.Error().Ctx(ctx).Err(err).Str("path", path).Msg("failed to load facility dataset")
		return nil, fmt.Errorf("loading facilities from %s: %w", path, err)
	}
	log.Debug().Ctx(ctx).Str("path", path).Int("facility_count", len(dir.Facilities())).
		Msg("facility dataset loaded")

	return dir, nil
}

// loadSnapshot reads the cached route distances into an immutable snapshot.
// A missing or empty cache yields an empty snapshot, not an error.
func loadSnapshot(ctx context.Context) (facility.DistanceSnapshot, error) {
	log := logging.FromContext(ctx)

	path, err := config.DistancesPath()
	if err != nil {
		return nil, err
	}

	rc, err := routecache.Open(path)
	if err != nil {
		log.Error().Ctx(ctx).Err(err).Str("path", path).Msg("failed to open route cache")
		return nil, fmt.Errorf("opening route cache: %w", err)
	}
	defer func() { _ = rc.Close() }()

	snapshot, err := rc.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading route cache: %w", err)
	}
	log.Debug().Ctx(ctx).Int("distance_count", len(snapshot)).Msg("distance snapshot loaded")

	return snapshot, nil
}

// openProjectStore creates the project store and loads its current state.
func openProjectStore(ctx context.Context) (*store.Store, error) {
	log := logging.FromContext(ctx)

	path, err := config.ProjectsPath()
	if err != nil {
		return nil, err
	}

	st, err := store.New(path)
	if err != nil {
		return nil, fmt.Errorf("creating project store: %w", err)
	}
	if err := st.Load(); err != nil {
		log.Error().Ctx(ctx).Err(err).Str("path", st.FilePath()).Msg("failed to load project store")
		return nil, fmt.Errorf("loading project store: %w", err)
	}

	return st, nil
}

// getProject fetches one project or returns a user-facing error naming it.
func getProject(st *store.Store, projectID string) (*engine.Project, error) {
	proj, ok := st.Get(projectID)
	if !ok {
		return nil, fmt.Errorf("project %q not found in %s", projectID, st.FilePath())
	}
	return proj, nil
}

// saveProject writes the project back and persists the store.
func saveProject(st *store.Store, proj *engine.Project) error {
	if err := st.Put(proj); err != nil {
		return fmt.Errorf("storing project: %w", err)
	}
	if err := st.Save(); err != nil {
		return fmt.Errorf("saving project store: %w", err)
	}
	return nil
}
