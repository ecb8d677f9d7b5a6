package catalog

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/quizstat/internal/model"
	"github.com/verte-zerg/quizstat/internal/stats"
	"github.com/verte-zerg/quizstat/internal/store"
)

func TestLoadTOMLAndYAMLMatch(t *testing.T) {
	fromTOML, err := Load(filepath.Join("testdata", "go.toml"))
	if err != nil {
		t.Fatalf("load toml: %v", err)
	}
	fromYAML, err := Load(filepath.Join("testdata", "go.yaml"))
	if err != nil {
		t.Fatalf("load yaml: %v", err)
	}
	if len(fromTOML.Topics) != 1 || len(fromTOML.Topics[0].Tests[0].Questions) != 2 {
		t.Fatalf("unexpected toml catalog: %+v", fromTOML)
	}
	if !fromTOML.Sessions[0].Date.Equal(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected session date: %v", fromTOML.Sessions[0].Date)
	}
	if !reflect.DeepEqual(fromTOML.Topics, fromYAML.Topics) || !reflect.DeepEqual(fromTOML.Users, fromYAML.Users) {
		t.Fatalf("expected toml and yaml catalogs to match:\n%+v\n%+v", fromTOML, fromYAML)
	}
	if len(fromYAML.Sessions) != 2 || !fromYAML.Sessions[1].Date.Equal(fromTOML.Sessions[1].Date) {
		t.Fatalf("unexpected yaml sessions: %+v", fromYAML.Sessions)
	}
}

func TestFormatFromPath(t *testing.T) {
	if f, err := FormatFromPath("a/b.YML"); err != nil || f != FormatYAML {
		t.Fatalf("expected yaml, got %q, %v", f, err)
	}
	if _, err := FormatFromPath("catalog.json"); err == nil {
		t.Fatalf("expected error for json")
	}
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	if _, err := Parse([]byte("[[users]]\nlogin = \"a\"\nemail = \"x\"\n"), FormatTOML); err == nil {
		t.Fatalf("expected toml unknown key error")
	}
	if _, err := Parse([]byte("users:\n  - login: a\n    email: x\n"), FormatYAML); err == nil {
		t.Fatalf("expected yaml unknown key error")
	}
}

func TestValidate(t *testing.T) {
	question := Question{Text: "q", Answers: []Answer{{Text: "a", Correct: true}, {Text: "b"}}}
	base := func() Catalog {
		return Catalog{
			Users:  []User{{Login: "ada"}},
			Topics: []Topic{{Name: "Go", Tests: []Test{{Name: "Basics", Questions: []Question{question}}}}},
			Sessions: []Session{
				{Login: "ada", Topic: "Go", Test: "Basics", Date: time.Unix(100, 0), Results: []bool{true}},
			},
		}
	}
	if err := base().Validate(); err != nil {
		t.Fatalf("expected valid catalog, got %v", err)
	}

	cases := map[string]func(*Catalog){
		"duplicate login": func(c *Catalog) { c.Users = append(c.Users, User{Login: "ada"}) },
		"no correct answer": func(c *Catalog) {
			c.Topics[0].Tests[0].Questions = []Question{{Text: "q", Answers: []Answer{{Text: "a"}, {Text: "b"}}}}
		},
		"unknown test":     func(c *Catalog) { c.Sessions[0].Test = "Advanced" },
		"too many results": func(c *Catalog) { c.Sessions[0].Results = []bool{true, false} },
		"missing date":     func(c *Catalog) { c.Sessions[0].Date = time.Time{} },
		"repeated date": func(c *Catalog) {
			c.Sessions = append(c.Sessions, c.Sessions[0])
		},
	}
	for name, mutate := range cases {
		cat := base()
		mutate(&cat)
		if err := cat.Validate(); !errors.Is(err, ErrInvalid) {
			t.Fatalf("%s: expected ErrInvalid, got %v", name, err)
		}
	}
}

func TestImportIntoStore(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "quizstat.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	cat, err := Load(filepath.Join("testdata", "go.toml"))
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}

	ctx := context.Background()
	sum, err := Import(ctx, st, cat)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	want := Summary{Users: 1, Topics: 1, Tests: 1, Questions: 2, Sessions: 2, Records: 4}
	if sum != want {
		t.Fatalf("expected %+v, got %+v", want, sum)
	}

	user, err := st.FindUserByLogin(ctx, "ada")
	if err != nil {
		t.Fatalf("find user: %v", err)
	}
	us, err := stats.NewService(st, model.AttemptsSum).UserStatistics(ctx, user)
	if err != nil {
		t.Fatalf("user statistics: %v", err)
	}
	if len(us.Tests) != 1 || us.Tests[0].Attempts != 2 || us.Tests[0].Average != 75 {
		t.Fatalf("unexpected user statistics: %+v", us.Tests)
	}
}

func TestImportUnknownSessionUser(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "quizstat.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	cat, err := Load(filepath.Join("testdata", "go.yaml"))
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	cat.Users = nil
	_, err = Import(context.Background(), st, cat)
	if !errors.Is(err, store.ErrNotFound) || !strings.Contains(err.Error(), "ada") {
		t.Fatalf("expected missing user error, got %v", err)
	}
}

func TestImportTwiceSkipsStoredSessions(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "quizstat.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	cat, err := Load(filepath.Join("testdata", "go.toml"))
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}

	ctx := context.Background()
	if _, err := Import(ctx, st, cat); err != nil {
		t.Fatalf("first import: %v", err)
	}
	sum, err := Import(ctx, st, cat)
	if err != nil {
		t.Fatalf("second import: %v", err)
	}
	if sum.Sessions != 0 || sum.Records != 0 || sum.Skipped != 2 {
		t.Fatalf("expected both sessions skipped, got %+v", sum)
	}

	user, err := st.FindUserByLogin(ctx, "ada")
	if err != nil {
		t.Fatalf("find user: %v", err)
	}
	us, err := stats.NewService(st, model.AttemptsSum).UserStatistics(ctx, user)
	if err != nil {
		t.Fatalf("user statistics after re-import: %v", err)
	}
	if len(us.Tests) != 1 || us.Tests[0].Attempts != 2 || us.Tests[0].Average != 75 {
		t.Fatalf("unexpected user statistics: %+v", us.Tests)
	}
}
