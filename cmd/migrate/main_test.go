package main

import (
	"errors"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeMigrator struct {
	upErr      error
	steps      []int
	migratedTo uint
	version    uint
	dirty      bool
	versionErr error
}

func (f *fakeMigrator) Up() error { return f.upErr }

func (f *fakeMigrator) Steps(n int) error {
	f.steps = append(f.steps, n)
	return nil
}

func (f *fakeMigrator) Migrate(version uint) error {
	f.migratedTo = version
	return nil
}

func (f *fakeMigrator) Version() (uint, bool, error) {
	return f.version, f.dirty, f.versionErr
}

func TestRun(t *testing.T) {
	log := zap.NewNop()

	assert.NoError(t, run(&fakeMigrator{upErr: migrate.ErrNoChange}, []string{"up"}, log))
	assert.Error(t, run(&fakeMigrator{upErr: errors.New("dirty database")}, []string{"up"}, log))

	m := &fakeMigrator{}
	assert.NoError(t, run(m, []string{"down"}, log))
	assert.Equal(t, []int{-1}, m.steps)

	assert.NoError(t, run(m, []string{"goto", "1"}, log))
	assert.Equal(t, uint(1), m.migratedTo)
	assert.Error(t, run(m, []string{"goto"}, log))
	assert.Error(t, run(m, []string{"goto", "x"}, log))

	assert.NoError(t, run(&fakeMigrator{versionErr: migrate.ErrNilVersion}, []string{"status"}, log))
	assert.NoError(t, run(&fakeMigrator{version: 1}, []string{"status"}, log))

	assert.Error(t, run(m, []string{"sideways"}, log))
}
