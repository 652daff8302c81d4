package cli

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/heritage-rag/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/heritage-rag/internal/core/domain"
	coreservices "github.com/custodia-labs/heritage-rag/internal/core/services"
)

// mockAnswerService implements driving.AnswerService for testing.
type mockAnswerService struct {
	question string
	filter   domain.Filter
	err      error
}

func (m *mockAnswerService) Ask(_ context.Context, question string, filter domain.Filter) (*domain.Answer, error) {
	m.question = question
	m.filter = filter
	if m.err != nil {
		return nil, m.err
	}
	return &domain.Answer{
		Question: question,
		Text:     "The Colosseum was completed in 80 AD.",
		Sources: []domain.Source{
			{SiteName: "Historic Centre of Rome", Country: "Italy", URL: "https://en.wikipedia.org/wiki/Colosseum"},
		},
		Context: "The Colosseum is an amphitheatre.",
		Model:   "test-llm",
	}, nil
}

// mockRetrieverService implements driving.RetrieverService for testing.
type mockRetrieverService struct {
	hits []domain.ScoredRecord
}

func (m *mockRetrieverService) Retrieve(ctx context.Context, query string, filter domain.Filter) (string, error) {
	hits, err := m.Search(ctx, query, filter)
	if err != nil {
		return "", err
	}
	return domain.GroundingContext(hits), nil
}

func (m *mockRetrieverService) Search(_ context.Context, _ string, _ domain.Filter) ([]domain.ScoredRecord, error) {
	return m.hits, nil
}

// mockCountryService implements driving.CountryService for testing.
type mockCountryService struct {
	countries []string
	err       error
}

func (m *mockCountryService) ListCountries(_ context.Context) ([]string, error) {
	return m.countries, m.err
}

// mockIndexingService implements driving.IndexingService for testing.
type mockIndexingService struct {
	mu     sync.Mutex
	opts   []domain.IndexOptions
	report *domain.IndexReport
	err    error
	runs   []domain.IndexRun
	status domain.IndexStatus
}

func (m *mockIndexingService) Run(_ context.Context, opts domain.IndexOptions) (*domain.IndexReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.opts = append(m.opts, opts)
	if m.err != nil {
		return nil, m.err
	}
	return m.report, nil
}

func (m *mockIndexingService) Status() domain.IndexStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

func (m *mockIndexingService) Runs(_ context.Context, limit int) ([]domain.IndexRun, error) {
	if limit > 0 && limit < len(m.runs) {
		return m.runs[:limit], nil
	}
	return m.runs, nil
}

type testServices struct {
	answer    *mockAnswerService
	retriever *mockRetrieverService
	countries *mockCountryService
	indexing  *mockIndexingService
}

// setupTestServices installs mock services and an in-memory settings
// service, returning a cleanup function.
func setupTestServices() func() {
	_, cleanup := setupTestServicesWith()
	return cleanup
}

func setupTestServicesWith() (*testServices, func()) {
	oldServices, oldSettings, oldBootstrap := services, settingsService, bootstrap

	ts := &testServices{
		answer: &mockAnswerService{},
		retriever: &mockRetrieverService{hits: []domain.ScoredRecord{
			{Score: 0.91, Record: domain.IndexRecord{ID: "1", Payload: domain.Payload{
				SiteName: "Historic Centre of Rome", Country: "Italy",
				Text: "The Colosseum is an oval amphitheatre.", SourceURL: "https://en.wikipedia.org/wiki/Colosseum"}}},
		}},
		countries: &mockCountryService{countries: []string{"France", "Italy"}},
		indexing: &mockIndexingService{report: &domain.IndexReport{
			SitesListed: 3, SitesIndexed: 1, Chunks: 4,
			Skipped: []domain.SiteOutcome{{Site: domain.Site{Name: "Atlantis", Country: "Nowhere"}, Err: domain.ErrFetchNotFound}},
			Failed:  []domain.SiteOutcome{{Site: domain.Site{Name: "Petra", Country: "Jordan"}, Err: domain.ErrFetch}},
		}},
	}

	services = &Services{
		Indexing:  ts.indexing,
		Retriever: ts.retriever,
		Answer:    ts.answer,
		Countries: ts.countries,
	}
	settingsService = newTestSettings()
	bootstrap = nil

	return ts, func() {
		services, settingsService, bootstrap = oldServices, oldSettings, oldBootstrap
	}
}

func newTestSettings() *coreservices.SettingsService {
	return coreservices.NewSettingsService(memory.NewConfigStore(), nil)
}

// execute runs the root command with args and returns its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}

func TestRootCmd_Use(t *testing.T) {
	assert.Equal(t, "heritage", rootCmd.Use)
}

func TestRootCmd_HasSubcommands(t *testing.T) {
	names := make([]string, 0)
	for _, cmd := range rootCmd.Commands() {
		names = append(names, cmd.Name())
	}

	for _, want := range []string{"ask", "retrieve", "index", "countries", "status", "serve", "mcp", "tui", "settings", "version"} {
		assert.Contains(t, names, want)
	}
}

func TestRequireServices_NotConfigured(t *testing.T) {
	oldServices, oldSettings, oldBootstrap := services, settingsService, bootstrap
	defer func() { services, settingsService, bootstrap = oldServices, oldSettings, oldBootstrap }()
	services, settingsService, bootstrap = nil, nil, nil

	_, err := requireServices(context.Background())

	assert.EqualError(t, err, "services not configured")
}

func TestRequireServices_BuildsOnceFromValidatedSettings(t *testing.T) {
	oldServices, oldSettings, oldBootstrap := services, settingsService, bootstrap
	defer func() { services, settingsService, bootstrap = oldServices, oldSettings, oldBootstrap }()
	services = nil
	SetSettingsService(newTestSettings())

	calls := 0
	var got *domain.Settings
	SetBootstrap(func(_ context.Context, s *domain.Settings) (*Services, error) {
		calls++
		got = s
		return &Services{Answer: &mockAnswerService{}}, nil
	})

	_, err := requireServices(context.Background())
	require.NoError(t, err)
	_, err = requireServices(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, domain.DefaultCollectionName, got.Index.Collection)
}

func TestRequireServices_InvalidSettings(t *testing.T) {
	oldServices, oldSettings, oldBootstrap := services, settingsService, bootstrap
	defer func() { services, settingsService, bootstrap = oldServices, oldSettings, oldBootstrap }()
	services = nil
	settings := newTestSettings()
	require.NoError(t, settings.Set("index.backend", "pgvector"))
	SetSettingsService(settings)
	SetBootstrap(func(context.Context, *domain.Settings) (*Services, error) {
		t.Fatal("bootstrap must not run with invalid settings")
		return nil, nil
	})

	_, err := requireServices(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "index.dsn")
}

func TestRequireServices_BootstrapError(t *testing.T) {
	oldServices, oldSettings, oldBootstrap := services, settingsService, bootstrap
	defer func() { services, settingsService, bootstrap = oldServices, oldSettings, oldBootstrap }()
	services = nil
	SetSettingsService(newTestSettings())
	SetBootstrap(func(context.Context, *domain.Settings) (*Services, error) {
		return nil, domain.ErrIndexUnavailable
	})

	_, err := requireServices(context.Background())

	assert.ErrorIs(t, err, domain.ErrIndexUnavailable)
	assert.Nil(t, services)
}

func TestCloseServices(t *testing.T) {
	oldServices := services
	defer func() { services = oldServices }()

	closed := false
	services = &Services{Close: func() error {
		closed = true
		return errors.New("already closed")
	}}

	closeServices()

	assert.True(t, closed)
	assert.Nil(t, services)
	assert.NotPanics(t, closeServices)
}

func TestSetVersion(t *testing.T) {
	original := version
	defer func() { version = original }()

	SetVersion("")
	assert.Equal(t, original, version)

	SetVersion("1.2.3")
	assert.Equal(t, "1.2.3", version)
}

// stubScheduler implements driving.Scheduler for testing.
type stubScheduler struct {
	started chan struct{}
	stopped bool
}

func (s *stubScheduler) Start(ctx context.Context) error {
	close(s.started)
	<-ctx.Done()
	return ctx.Err()
}

func (s *stubScheduler) Stop() error {
	s.stopped = true
	return nil
}

func TestStartScheduler(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		stop := startScheduler(context.Background(), &Services{})
		assert.NotPanics(t, stop)
	})

	t.Run("runs until stopped", func(t *testing.T) {
		sched := &stubScheduler{started: make(chan struct{})}

		stop := startScheduler(context.Background(), &Services{Scheduler: sched})

		select {
		case <-sched.started:
		case <-time.After(time.Second):
			t.Fatal("scheduler was not started")
		}
		stop()
		assert.True(t, sched.stopped)
	})
}

// busyScheduler is mid-run: Stop waits for the run, which only ends once
// the scheduler context is cancelled.
type busyScheduler struct {
	started  chan struct{}
	finished chan struct{}
}

func (s *busyScheduler) Start(ctx context.Context) error {
	close(s.started)
	<-ctx.Done()
	close(s.finished)
	return ctx.Err()
}

func (s *busyScheduler) Stop() error {
	<-s.finished
	return nil
}

func TestStartScheduler_StopCancelsInFlightRun(t *testing.T) {
	sched := &busyScheduler{started: make(chan struct{}), finished: make(chan struct{})}
	stop := startScheduler(context.Background(), &Services{Scheduler: sched})
	<-sched.started

	done := make(chan struct{})
	go func() {
		stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("stop blocked on the in-flight run")
	}
}
