package repository

import (
	"testing"
)

func TestBuildLikeConditionByDialectSQLite(t *testing.T) {
	condition, argCount := buildLikeConditionByDialect("sqlite", []string{"content", "users.nickname"})
	want := "content LIKE ? OR users.nickname LIKE ?"
	if condition != want {
		t.Fatalf("condition want %q got %q", want, condition)
	}
	if argCount != 2 {
		t.Fatalf("arg count want 2 got %d", argCount)
	}
}

func TestBuildLikeConditionByDialectPostgres(t *testing.T) {
	condition, argCount := buildLikeConditionByDialect("postgres", []string{"content"})
	want := "content ILIKE ?"
	if condition != want {
		t.Fatalf("condition want %q got %q", want, condition)
	}
	if argCount != 1 {
		t.Fatalf("arg count want 1 got %d", argCount)
	}
}

func TestBuildLikeConditionSkipsBlankColumns(t *testing.T) {
	condition, argCount := buildLikeConditionByDialect("sqlite", []string{" ", "email", ""})
	if condition != "email LIKE ?" {
		t.Fatalf("condition want email LIKE ? got %q", condition)
	}
	if argCount != 1 {
		t.Fatalf("arg count want 1 got %d", argCount)
	}
}

func TestDBDialectNameDefaultsToSQLite(t *testing.T) {
	if got := dbDialectName(nil); got != "sqlite" {
		t.Fatalf("dialect want sqlite got %s", got)
	}
}

func TestRepeatLikeArgs(t *testing.T) {
	args := repeatLikeArgs("%hike%", 3)
	if len(args) != 3 {
		t.Fatalf("args len want 3 got %d", len(args))
	}
	for idx, arg := range args {
		if arg != "%hike%" {
			t.Fatalf("args[%d] want %%hike%% got %v", idx, arg)
		}
	}
}
