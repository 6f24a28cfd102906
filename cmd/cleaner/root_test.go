package main

import (
	"bytes"
	"context"
	"regexp"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FranciscoH-alt/CSV-Excel-Cleaning-Tool/internal/config"
	"github.com/FranciscoH-alt/CSV-Excel-Cleaning-Tool/internal/core"
	"github.com/FranciscoH-alt/CSV-Excel-Cleaning-Tool/internal/tableio"
)

const contactsCSV = "Full Name,E-Mail Address,Start Date,Revenue($),Notes\n" +
	" alice smith ,A@X.COM,2023-01-01,$100,  call   back \n" +
	"Alice Smith,a@x.com,2023-06-01,$50,vip\n" +
	"Bob,not-an-email,2023-01-01,$10,\n"

type harness struct {
	fs     afero.Fs
	stdout *bytes.Buffer
	stderr *bytes.Buffer
	app    *app
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_URL", "")

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "contacts.csv", []byte(contactsCSV), 0o644))

	h := &harness{fs: fs, stdout: &bytes.Buffer{}, stderr: &bytes.Buffer{}}
	h.app = &app{
		fs:     fs,
		stdout: h.stdout,
		stderr: h.stderr,
		connect: func(context.Context, config.DatabaseConfig) (exportTarget, error) {
			t.Fatal("connect called without DATABASE_URL")
			return nil, nil
		},
	}
	return h
}

func (h *harness) run(args ...string) error {
	root := newRootCmd(h.app)
	root.SetArgs(args)
	return root.ExecuteContext(context.Background())
}

// ---- formats ----

func TestFormatsCmd(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run("formats"))

	lines := strings.Split(strings.TrimSpace(h.stdout.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, []string{"FORMAT", "EXTENSIONS", "READ", "WRITE"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"CSV", ".csv", "yes", "yes"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"Excel", ".xlsx", "yes", "yes"}, strings.Fields(lines[2]))
	assert.Equal(t, []string{"Excel", "97-2003", ".xls", "yes", "no"}, strings.Fields(lines[3]))
}

// ---- clean ----

func TestCleanCmd_DefaultOutput(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run("clean", "contacts.csv"))

	exists, err := afero.Exists(h.fs, DefaultOutput)
	require.NoError(t, err)
	assert.True(t, exists)

	out := h.stdout.String()
	assert.Contains(t, out, "Cleaned contacts.csv -> output/cleaned_file.xlsx")
	assert.Contains(t, out, "rows read:     3")
	assert.Contains(t, out, "e-mail_address empty or invalid: 1")
	assert.Contains(t, out, "rows written:  1")
}

func TestCleanCmd_DryRun(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run("clean", "contacts.csv", "--dry-run"))

	assert.Equal(t,
		"full_name,e-mail_address,start_date,revenue($),notes\n"+
			"Alice Smith,a@x.com,2023-06-01,150,call back; vip\n",
		h.stdout.String())
	assert.Contains(t, h.stderr.String(), "Dry run of contacts.csv")

	exists, _ := afero.Exists(h.fs, "output")
	assert.False(t, exists, "dry run must not write")
}

func TestCleanCmd_CSVOutput(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run("clean", "contacts.csv", "-o", "out/clean.csv"))

	data, err := afero.ReadFile(h.fs, "out/clean.csv")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "full_name,e-mail_address,start_date,revenue($),notes\n"))
}

func TestCleanCmd_UnsupportedInput(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, afero.WriteFile(h.fs, "contacts.txt", []byte(contactsCSV), 0o644))

	err := h.run("clean", "contacts.txt")

	var unsupported *tableio.UnsupportedFormatError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "FILE003", core.MapError(err).Code)

	exists, _ := afero.Exists(h.fs, DefaultOutput)
	assert.False(t, exists)
}

func TestCleanCmd_RequiresInput(t *testing.T) {
	h := newHarness(t)

	assert.Error(t, h.run("clean"))
}

func TestCleanCmd_RulesFile(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, afero.WriteFile(h.fs, "rules.yaml", []byte(
		"columns:\n  email: email\n  full_name: name\nnotes_separator: \" | \"\n"), 0o644))
	require.NoError(t, afero.WriteFile(h.fs, "people.csv", []byte(
		"Name,Email,Start Date,Notes\n"+
			"pat lee,PAT@X.COM,2023-01-01,a\n"+
			"Pat Lee,pat@x.com,2023-02-01,b\n"), 0o644))

	require.NoError(t, h.run("clean", "people.csv", "--rules", "rules.yaml", "--dry-run"))

	assert.Equal(t,
		"name,email,start_date,notes\n"+
			"Pat Lee,pat@x.com,2023-02-01,a | b\n",
		h.stdout.String())
}

func TestCleanCmd_InvalidRulesFile(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, afero.WriteFile(h.fs, "rules.yaml", []byte("colums:\n  email: x\n"), 0o644))

	err := h.run("clean", "contacts.csv", "--rules", "rules.yaml")

	require.ErrorIs(t, err, config.ErrInvalidRules)
	assert.Equal(t, "CFG001", core.MapError(err).Code)
}

func TestCleanCmd_PostgresExport(t *testing.T) {
	h := newHarness(t)
	t.Setenv("DATABASE_URL", "postgres://cleaner@localhost/contacts")

	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	columns := []string{"full_name", "e-mail_address", "start_date", "revenue($)", "notes"}
	mockPool.ExpectBegin()
	mockPool.ExpectExec(regexp.QuoteMeta(`CREATE TABLE IF NOT EXISTS "staging"."contacts"`)).
		WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))
	mockPool.ExpectExec(regexp.QuoteMeta(`TRUNCATE TABLE "staging"."contacts"`)).
		WillReturnResult(pgxmock.NewResult("TRUNCATE TABLE", 0))
	mockPool.ExpectCopyFrom(pgx.Identifier{"staging", "contacts"}, columns).
		WillReturnResult(1)
	mockPool.ExpectCommit()

	var gotURL string
	h.app.connect = func(_ context.Context, cfg config.DatabaseConfig) (exportTarget, error) {
		gotURL = cfg.URL
		return mockPool, nil
	}

	require.NoError(t, h.run("clean", "contacts.csv", "-o", "out.csv", "--pg-table", "staging.contacts", "--pg-truncate"))

	assert.Equal(t, "postgres://cleaner@localhost/contacts", gotURL)
	assert.Contains(t, h.stdout.String(), "rows exported: 1")
	assert.NoError(t, mockPool.ExpectationsWereMet())
}
