package seed

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmpny/customerdataservice/internal/domain/customers"
	"github.com/cmpny/customerdataservice/internal/storage/memory"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

type failingRepository struct {
	*memory.CustomerRepository
	failFor string
}

func (f *failingRepository) Save(ctx context.Context, c customers.Customer) (customers.Customer, error) {
	if c.EmailAddress == f.failFor {
		return customers.Customer{}, errors.New("write failed")
	}
	return f.CustomerRepository.Save(ctx, c)
}

func TestLoadDefault(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewCustomerRepository()

	res, err := LoadDefault(ctx, repo, quiet)
	require.NoError(t, err)
	require.Len(t, res.Saved, 3)
	assert.Zero(t, res.Skipped)
	assert.Zero(t, res.Failed)

	jane, err := repo.FindByEmail(ctx, "jane.doe@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Marie", jane.MiddleName)
	assert.NotEmpty(t, jane.ID)

	for _, c := range res.Saved {
		assert.NoError(t, customers.Validate(c, false), "seed record %s must be valid", c.EmailAddress)
	}
}

func TestLoadTwiceSkipsExisting(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewCustomerRepository()

	_, err := LoadDefault(ctx, repo, quiet)
	require.NoError(t, err)

	res, err := LoadDefault(ctx, repo, quiet)
	require.NoError(t, err)
	assert.Empty(t, res.Saved)
	assert.Equal(t, 3, res.Skipped)

	all, err := repo.List(ctx, 0, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestLoadIgnoresSuppliedIDs(t *testing.T) {
	repo := memory.NewCustomerRepository()
	doc := `[{"id":"fixed","firstName":"A","lastName":"B","emailAddress":"a@example.com","phoneNumber":"1"}]`

	res, err := Load(context.Background(), repo, strings.NewReader(doc), quiet)
	require.NoError(t, err)
	require.Len(t, res.Saved, 1)
	assert.NotEqual(t, "fixed", res.Saved[0].ID)
}

func TestLoadContinuesPastFailures(t *testing.T) {
	repo := &failingRepository{CustomerRepository: memory.NewCustomerRepository(), failFor: "john.smith@example.com"}

	res, err := LoadDefault(context.Background(), repo, quiet)
	require.NoError(t, err)
	assert.Len(t, res.Saved, 2)
	assert.Equal(t, 1, res.Failed)
}

func TestLoadRejectsMalformedDocument(t *testing.T) {
	_, err := Load(context.Background(), memory.NewCustomerRepository(), strings.NewReader(`{"not":"an array"}`), quiet)
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "customers.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"firstName":"F","lastName":"L","emailAddress":"file@example.com","phoneNumber":"1"}]`), 0o600))

	res, err := LoadFile(ctx, memory.NewCustomerRepository(), path, quiet)
	require.NoError(t, err)
	require.Len(t, res.Saved, 1)
	assert.Equal(t, "file@example.com", res.Saved[0].EmailAddress)

	res, err = LoadFile(ctx, memory.NewCustomerRepository(), "", quiet)
	require.NoError(t, err)
	assert.Len(t, res.Saved, 3)

	_, err = LoadFile(ctx, memory.NewCustomerRepository(), filepath.Join(t.TempDir(), "missing.json"), quiet)
	assert.Error(t, err)
}
