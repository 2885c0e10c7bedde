package models

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("file not found")
	ErrBadRequest    = errors.New("bad request")
	ErrCorruptChunk  = errors.New("chunk verification failed")
	ErrStoreNotReady = errors.New("store not ready")
)

// StoreError оборачивает сбой хранилища, который не сводится к ErrNotFound.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// WrapStore превращает ошибку хранилища в *StoreError, оставляя ErrNotFound и nil как есть.
func WrapStore(op string, err error) error {
	if err == nil || errors.Is(err, ErrNotFound) {
		return err
	}
	var se *StoreError
	if errors.As(err, &se) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}
