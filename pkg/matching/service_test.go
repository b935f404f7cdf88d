package matching

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/clover/internal/repositories/matchrecord"
	"github.com/Ramsey-B/clover/internal/repositories/matchrun"
	"github.com/Ramsey-B/clover/pkg/database"
	"github.com/Ramsey-B/clover/pkg/logging"
	"github.com/Ramsey-B/clover/pkg/models"
)

// fakeDB accepts every write so repository calls succeed without a database.
type fakeDB struct {
	execs []string
}

func (f *fakeDB) ExecContext(_ context.Context, query string, _ ...any) (sql.Result, error) {
	f.execs = append(f.execs, query)
	return driver.RowsAffected(1), nil
}

func (f *fakeDB) BeginTxx(context.Context, *sql.TxOptions) (*sqlx.Tx, error) { return nil, nil }
func (f *fakeDB) Close() error                                               { return nil }
func (f *fakeDB) GetContext(context.Context, any, string, ...any) error      { return nil }
func (f *fakeDB) SelectContext(context.Context, any, string, ...any) error   { return nil }
func (f *fakeDB) QueryxContext(context.Context, string, ...any) (*sqlx.Rows, error) {
	return nil, nil
}
func (f *fakeDB) Ping() error                       { return nil }
func (f *fakeDB) PingContext(context.Context) error { return nil }
func (f *fakeDB) SetConnMaxLifetime(time.Duration)  {}
func (f *fakeDB) SetMaxIdleConns(int)               {}
func (f *fakeDB) SetMaxOpenConns(int)               {}
func (f *fakeDB) Stats() sql.DBStats                { return sql.DBStats{} }
func (f *fakeDB) GetTx(ctx context.Context, _ *sql.TxOptions) (context.Context, database.Tx, error) {
	return ctx, nil, errors.New("transactions unavailable")
}

func newTestService(embedder Embedder) *Service {
	logger := logging.NewNoop()
	db := &fakeDB{}
	return NewService(
		newTestPipeline(embedder),
		matchrun.NewRepository(db, logger),
		matchrecord.NewRepository(db, logger),
		nil,
		logger,
	)
}

func TestStartRunReturnsPartialResultsOnStageFailure(t *testing.T) {
	providerErr := errors.New("provider down")
	service := newTestService(&fakeEmbedder{err: providerErr})

	output, err := service.StartRun(context.Background(), StartRunInput{
		Method:     string(models.MatchMethodSemantic),
		Principals: []string{"Acme Corp", "Globex"},
		Candidates: []string{"ACME CORP"},
	}, nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, providerErr)

	// the exact-stage rows survive the failed semantic stage
	require.NotNil(t, output)
	require.NotNil(t, output.Run)
	assert.Equal(t, models.MatchRunStatusFailed, output.Run.Status)
	require.NotNil(t, output.Run.ErrorMessage)

	require.Len(t, output.Records, 2)
	assert.Equal(t, models.MatchTypeExact, output.Records[0].MatchType)
	assert.Equal(t, models.MatchTypeUnmatched, output.Records[1].MatchType)
}

func TestStartRunRejectsInvalidConfigBeforeCreatingRun(t *testing.T) {
	logger := logging.NewNoop()
	db := &fakeDB{}
	service := NewService(
		newTestPipeline(nil),
		matchrun.NewRepository(db, logger),
		matchrecord.NewRepository(db, logger),
		nil,
		logger,
	)

	output, err := service.StartRun(context.Background(), StartRunInput{
		Method:     "bogus",
		Principals: []string{"a"},
		Candidates: []string{"b"},
	}, nil)

	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Nil(t, output)
	assert.Empty(t, db.execs, "malformed requests should not write a run row")
}
