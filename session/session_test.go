// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/danielhkuo/survetic/testutil"
)

// testStores runs fn against every Store implementation.
func testStores(t *testing.T, fn func(t *testing.T, s Store)) {
	t.Run("sql", func(t *testing.T) {
		fn(t, NewSQLStore(testutil.SetupTestDB(t)))
	})
	t.Run("redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { rdb.Close() })
		fn(t, NewRedisStore(rdb))
	})
}

func TestStore_CreateLookupDelete(t *testing.T) {
	testStores(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		exp := time.Now().Add(time.Hour)

		if err := s.Create(ctx, "sid-1", "user-1", exp); err != nil {
			t.Fatalf("Create() error = %v", err)
		}

		uid, err := s.Lookup(ctx, "sid-1")
		if err != nil {
			t.Fatalf("Lookup() error = %v", err)
		}
		if uid != "user-1" {
			t.Errorf("Lookup() = %q, want user-1", uid)
		}

		if _, err := s.Lookup(ctx, "unknown"); !errors.Is(err, ErrNotFound) {
			t.Errorf("Lookup(unknown) error = %v, want ErrNotFound", err)
		}

		if err := s.Delete(ctx, "sid-1"); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		if _, err := s.Lookup(ctx, "sid-1"); !errors.Is(err, ErrNotFound) {
			t.Errorf("Lookup(deleted) error = %v, want ErrNotFound", err)
		}

		// Deleting twice is fine
		if err := s.Delete(ctx, "sid-1"); err != nil {
			t.Errorf("second Delete() error = %v", err)
		}
	})
}

func TestStore_DeleteUser(t *testing.T) {
	testStores(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		exp := time.Now().Add(time.Hour)

		for _, sid := range []string{"a", "b", "c"} {
			if err := s.Create(ctx, sid, "user-1", exp); err != nil {
				t.Fatal(err)
			}
		}
		if err := s.Create(ctx, "z", "user-2", exp); err != nil {
			t.Fatal(err)
		}

		if err := s.DeleteUser(ctx, "user-1", "b"); err != nil {
			t.Fatalf("DeleteUser() error = %v", err)
		}

		for sid, alive := range map[string]bool{"a": false, "b": true, "c": false, "z": true} {
			_, err := s.Lookup(ctx, sid)
			if alive && err != nil {
				t.Errorf("session %s should survive: %v", sid, err)
			}
			if !alive && !errors.Is(err, ErrNotFound) {
				t.Errorf("session %s should be gone, got %v", sid, err)
			}
		}

		if err := s.DeleteUser(ctx, "user-1", ""); err != nil {
			t.Fatal(err)
		}
		if _, err := s.Lookup(ctx, "b"); !errors.Is(err, ErrNotFound) {
			t.Errorf("DeleteUser without keep should remove every session, got %v", err)
		}

		// No sessions at all
		if err := s.DeleteUser(ctx, "nobody", ""); err != nil {
			t.Errorf("DeleteUser(nobody) error = %v", err)
		}
	})
}

func TestSQLStore_Expiry(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	s := NewSQLStore(conn)
	ctx := context.Background()

	base := time.Now()
	if err := s.Create(ctx, "old", "user-1", base.Add(time.Minute)); err != nil {
		t.Fatal(err)
	}

	s.now = func() time.Time { return base.Add(2 * time.Minute) }
	if _, err := s.Lookup(ctx, "old"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Lookup(expired) error = %v, want ErrNotFound", err)
	}

	// Creating another session purges the expired row
	if err := s.Create(ctx, "new", "user-1", base.Add(time.Hour)); err != nil {
		t.Fatal(err)
	}
	var n int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM sessions WHERE sid = $1`, "old").Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Error("expired session was not purged")
	}
}

func TestRedisStore_Expiry(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	s := NewRedisStore(rdb)
	ctx := context.Background()

	if err := s.Create(ctx, "sid", "user-1", time.Now().Add(time.Minute)); err != nil {
		t.Fatal(err)
	}
	if !mr.Exists("session:sid") || !mr.Exists("user_sessions:user-1") {
		t.Fatal("expected session key and user index")
	}

	mr.FastForward(2 * time.Minute)
	if _, err := s.Lookup(ctx, "sid"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Lookup(expired) error = %v, want ErrNotFound", err)
	}

	if err := s.Create(ctx, "late", "user-1", time.Now().Add(-time.Second)); err == nil {
		t.Error("Create() with a past expiry should fail")
	}
}
