package records

import (
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestBetter(t *testing.T) {
	done := func(sec, score int) Record {
		return Record{Completed: true, Score: score, Elapsed: time.Duration(sec) * time.Second}
	}
	failed := func(score int) Record { return Record{Score: score} }

	cases := []struct {
		name       string
		prev, next Record
		want       bool
	}{
		{"completion beats failure", failed(50), done(100, 10), true},
		{"failure never replaces completion", done(100, 10), failed(500), false},
		{"faster completion wins", done(100, 10), done(90, 5), true},
		{"slower completion loses", done(90, 10), done(100, 50), false},
		{"same time higher score", done(90, 10), done(90, 11), true},
		{"higher failed score", failed(3), failed(4), true},
		{"equal failed score", failed(3), failed(3), false},
	}
	for _, tc := range cases {
		if got := Better(tc.prev, tc.next); got != tc.want {
			t.Fatalf("%s: Better=%v want %v", tc.name, got, tc.want)
		}
	}
}

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	if _, ok := s.Get("level1"); ok {
		t.Fatalf("empty store returned a record")
	}
	ok, err := s.Offer(Record{LevelID: "level1", Score: 4})
	if err != nil || !ok {
		t.Fatalf("first offer: ok=%v err=%v", ok, err)
	}
	ok, err = s.Offer(Record{LevelID: "level1", Score: 2})
	if err != nil || ok {
		t.Fatalf("worse offer accepted: ok=%v err=%v", ok, err)
	}
	ok, err = s.Offer(Record{LevelID: "level1", Completed: true, Score: 9, Elapsed: 1500 * time.Millisecond})
	if err != nil || !ok {
		t.Fatalf("completion rejected: ok=%v err=%v", ok, err)
	}
	r, found := s.Get("level1")
	if !found || !r.Completed || r.Score != 9 || r.Elapsed != 1500*time.Millisecond {
		t.Fatalf("unexpected record %+v", r)
	}
	if _, err := s.Offer(Record{LevelID: "level2", Score: 1}); err != nil {
		t.Fatalf("offer level2: %v", err)
	}
	all, err := s.All()
	if err != nil || len(all) != 2 {
		t.Fatalf("All: %v %+v", err, all)
	}
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestSQLStore(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	s, err := OpenSQL(dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()
	exerciseStore(t, s)
}

func TestOpen(t *testing.T) {
	s, err := Open("memory", "")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := s.(*MemoryStore); !ok {
		t.Fatalf("memory store is %T", s)
	}
	sq, err := Open("sqlite", "file:open_test?mode=memory&cache=shared")
	if err != nil {
		t.Fatal(err)
	}
	defer sq.(*SQLStore).Close()
	exerciseStore(t, sq)
	if _, err := Open("redis", ""); err == nil {
		t.Fatal("unknown store accepted")
	}
}
