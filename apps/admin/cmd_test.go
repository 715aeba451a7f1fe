package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/pathways/core"
	"github.com/trezcool/pathways/core/catalog"
	"github.com/trezcool/pathways/core/dashboard"
	"github.com/trezcool/pathways/core/kv"
	"github.com/trezcool/pathways/core/namespace"
	"github.com/trezcool/pathways/core/session"
	sqlkv "github.com/trezcool/pathways/storage/kvstore/sqlstore"
	"github.com/trezcool/pathways/tests"
)

func setup(t *testing.T) (*commandLine, *bytes.Buffer) {
	// set up DB & namespaces
	db := testutil.PrepareDB(t)
	logger := new(testutil.Logger)
	adapter := kv.NewAdapter(sqlkv.New(db), logger)
	reg := namespace.NewRegistry(adapter)

	seeds, err := namespace.DefaultSeeds()
	if err != nil {
		t.Fatalf("DefaultSeeds() failed, %v", err)
	}
	boards := dashboard.NewBoards(reg, seeds, logger)
	validate, _ := core.NewValidator()

	// start CLI
	out := new(bytes.Buffer)
	return &commandLine{
		db:       db,
		reg:      reg,
		admins:   boards.AdminUsers,
		sessions: session.NewManager(adapter, boards.AdminUsers, core.NewTestConfig()),
		validate: validate,
		out:      out,
	}, out
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func runCLITests(t *testing.T, cli *commandLine, tests []cliTest) {
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != nil {
				if tt.wantErr != nil {
					if errors.Cause(err) != tt.wantErr {
						t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
					}
				} else if tt.wantErrStr != "" {
					if err.Error() != tt.wantErrStr {
						t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
					}
				} else {
					t.Errorf("cli.run() unexpected error = %v", err)
				}
			} else if tt.wantErr != nil || tt.wantErrStr != "" {
				t.Errorf("cli.run() error = nil, wantErr %v%s", tt.wantErr, tt.wantErrStr)
			}
		})
	}
}

func Test_commandLine_migrate(t *testing.T) {
	cli, _ := setup(t)

	migrateFunc = func(command string, db *sqlx.DB, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return errors.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return errors.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return errors.New("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		default:
			return errors.Errorf("%q: no such command", command)
		}
		return nil
	}
	defer func(orig func(string, *sqlx.DB, ...string) error) { migrateFunc = orig }(migrateFunc)

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "create", args: []string{"migrate", "create", "kv_index", "sql"}},
	}
	runCLITests(t, cli, tests)

	cli.db = nil
	runCLITests(t, cli, []cliTest{
		{name: "no database", args: []string{"migrate", "up"}, wantErr: errNoDatabase},
	})
}

func Test_commandLine_seed(t *testing.T) {
	cli, out := setup(t)

	require.NoError(t, cli.run([]string{"admin", "seed"}))
	assert.Equal(t, len(namespace.AllKeys), bytes.Count(out.Bytes(), []byte("seeded ")))

	// seed once: admin edits win
	ctx := context.Background()
	require.NoError(t, cli.reg.Careers.Save(ctx, []catalog.Career{{ID: 1, Name: "Edited"}}))
	out.Reset()
	require.NoError(t, cli.run([]string{"admin", "seed"}))
	assert.Equal(t, "nothing to seed\n", out.String())
	careers, err := cli.reg.Careers.Get(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, []catalog.Career{{ID: 1, Name: "Edited"}}, careers)

	out.Reset()
	require.NoError(t, cli.run([]string{"admin", "seed", "-force"}))
	assert.Contains(t, out.String(), "seeded "+namespace.KeyCareers)
	careers, err = cli.reg.Careers.Get(ctx, nil)
	require.NoError(t, err)
	assert.NotEqual(t, []catalog.Career{{ID: 1, Name: "Edited"}}, careers)
}

func Test_commandLine_getSet(t *testing.T) {
	cli, out := setup(t)
	dir := t.TempDir()

	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
		return path
	}
	valid := write("careers.json", `[{"id":7,"name":"Pilot"}]`)
	object := write("object.json", `{"id":7}`)
	broken := write("broken.json", `[{"id":`)

	tests := []cliTest{
		{name: "get: no key", args: []string{"get"}, wantErr: errHelp},
		{name: "get: unknown key", args: []string{"get", "-key", "lol"}, wantErrStr: "lol: no such key"},
		{name: "set: no file", args: []string{"set", "-key", namespace.KeyCareers}, wantErr: errHelp},
		{name: "set: missing file", args: []string{"set", "-key", namespace.KeyCareers, "-file", filepath.Join(dir, "lol.json")}, wantErrStr: "reading document: open " + filepath.Join(dir, "lol.json") + ": no such file or directory"},
		{name: "set: broken JSON", args: []string{"set", "-key", namespace.KeyCareers, "-file", broken}, wantErr: errInvalidJSON},
		{name: "set: not a list", args: []string{"set", "-key", namespace.KeyCareers, "-file", object}, wantErrStr: namespace.KeyCareers + " holds a list: json: cannot unmarshal object into Go value of type []json.RawMessage"},
		{name: "set: ad hoc key", args: []string{"set", "-key", "settings", "-file", object}},
		{name: "set", args: []string{"set", "-key", namespace.KeyCareers, "-file", valid}},
		{name: "get", args: []string{"get", "-key", namespace.KeyCareers}},
	}
	runCLITests(t, cli, tests)
	assert.Contains(t, out.String(), `[{"id":7,"name":"Pilot"}]`)

	careers, err := cli.reg.Careers.Get(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, []catalog.Career{{ID: 7, Name: "Pilot"}}, careers)

	out.Reset()
	require.NoError(t, cli.run([]string{"admin", "keys"}))
	assert.Equal(t, namespace.KeyCareers+"\nsettings\n", out.String())
}

// mockPassword makes the password prompt answer pwd and returns a func restoring it.
func mockPassword(pwd string) func() {
	orig := readPasswordFunc
	readPasswordFunc = func(fd int) ([]byte, error) { return []byte(pwd), nil }
	return func() { readPasswordFunc = orig }
}

func Test_commandLine_addUser(t *testing.T) {
	cli, _ := setup(t)
	ctx := context.Background()

	restore := mockPassword("")
	defer restore()
	runCLITests(t, cli, []cliTest{
		{name: "no args", args: []string{"adduser"}, wantErr: errHelp},
		{name: "email but no password", args: []string{"adduser", "-email", "new@test.test"}, wantErr: errHelp},
	})

	mockPassword("short")
	err := cli.run([]string{"admin", "adduser", "-email", "new@test.test", "-name", "New"})
	assert.Error(t, err, "short passwords are rejected")

	mockPassword("password1")
	err = cli.run([]string{"admin", "adduser", "-email", "new@test.test"})
	assert.Error(t, err, "new admins need a name")

	require.NoError(t, cli.run([]string{"admin", "adduser", "-email", " New@Test.test ", "-name", "New", "-role", "Editor"}))
	sess, _, err := cli.sessions.SignIn(ctx, session.Credentials{Role: core.RoleAdmin, Email: "new@test.test", Password: "password1"})
	require.NoError(t, err)
	assert.Equal(t, "New", sess.Name)

	// seeded admins have no password until one is set
	_, _, err = cli.sessions.SignIn(ctx, session.Credentials{Role: core.RoleAdmin, Email: "admin@example.com", Password: "password1"})
	assert.Equal(t, session.ErrAuthenticationFailed, errors.Cause(err))
	require.NoError(t, cli.run([]string{"admin", "adduser", "-email", "admin@example.com"}))
	_, _, err = cli.sessions.SignIn(ctx, session.Credentials{Role: core.RoleAdmin, Email: "admin@example.com", Password: "password1"})
	require.NoError(t, err)

	users, err := cli.admins.List(ctx)
	require.NoError(t, err)
	usr, found := catalog.FindAdminUser(users, "admin@example.com")
	require.True(t, found)
	assert.Equal(t, "Platform Admin", usr.Name, "existing names are kept")
	assert.Len(t, users, 3)
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli, _ := setup(t)
	ctx := context.Background()

	users, err := cli.admins.List(ctx)
	require.NoError(t, err)
	usr, _ := catalog.FindAdminUser(users, "editor@example.com")

	defer mockPassword("")()

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "email but no password", args: []string{"resetpassword", "-email", "lol@test.test"}, wantErr: errHelp},
		{name: "user not found", args: []string{"resetpassword", "-email", "lol@test.test"}, extra: extra{pwd: "password1"}, wantErr: errUserNotFound},
		{name: "reset", args: []string{"resetpassword", "-email", usr.Email}, extra: extra{pwd: "password1"}},
		{name: "reset again", args: []string{"resetpassword", "-email", "EDITOR@example.com"}, extra: extra{pwd: "password2"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			if extra, ok := tt.extra.(extra); ok {
				return []byte(extra.pwd), nil
			}
			return nil, nil
		}

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if err == nil {
				refreshedUsr, found, err := cli.admins.Get(ctx, usr.ID)
				if err != nil || !found {
					t.Fatalf("admins.Get() failed, %v", err)
				}
				if refreshedUsr.PasswordHash == usr.PasswordHash {
					t.Error("failed to update new password")
				}
				if err = refreshedUsr.CheckPassword(tt.extra.(extra).pwd); err != nil {
					t.Errorf("CheckPassword() failed, %v", err)
				}
				usr = refreshedUsr
			} else if err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func Test_commandLine_purgeSessions(t *testing.T) {
	cli, out := setup(t)
	ctx := context.Background()
	creds := session.Credentials{Role: core.RoleStudent, Email: "jane@test.test"}

	core.NowFunc = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	_, _, err := cli.sessions.SignIn(ctx, creds)
	core.NowFunc = time.Now // reset
	require.NoError(t, err)

	_, token, err := cli.sessions.SignIn(ctx, creds)
	require.NoError(t, err)

	require.NoError(t, cli.run([]string{"admin", "purgesessions"}))
	assert.Equal(t, "purged 1 expired session(s)\n", out.String())

	_, err = cli.sessions.Verify(ctx, token)
	assert.NoError(t, err, "live sessions are kept")
}
