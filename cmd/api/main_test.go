package main

import (
	"errors"
	"testing"

	"go.uber.org/multierr"
)

type fakeCloser struct {
	err    error
	closed bool
}

func (f *fakeCloser) Close() error {
	f.closed = true
	return f.err
}

func TestCloseClientsKeepsEveryError(t *testing.T) {
	redisErr := errors.New("redis: connection reset")
	dbErr := errors.New("db: already closed")
	ok := &fakeCloser{}
	redis := &fakeCloser{err: redisErr}
	database := &fakeCloser{err: dbErr}

	err := closeClients(redis, ok, database)

	if !redis.closed || !ok.closed || !database.closed {
		t.Fatal("expected every closer to be called")
	}
	got := multierr.Errors(err)
	if len(got) != 2 {
		t.Fatalf("expected 2 errors, got %d: %v", len(got), got)
	}
	if got[0] != redisErr || got[1] != dbErr {
		t.Fatalf("unexpected errors: %v", got)
	}
}

func TestCloseClientsNilOnSuccess(t *testing.T) {
	if err := closeClients(&fakeCloser{}, &fakeCloser{}); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}
