package repository

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
)

func TestClassifySeedScan(t *testing.T) {
	t.Parallel()

	if err := classifySeedScan(nil); err != nil {
		t.Errorf("nil scan err = %v, want nil", err)
	}
	if err := classifySeedScan(pgx.ErrNoRows); err != nil {
		t.Errorf("conflict no-op err = %v, want nil", err)
	}

	broken := errors.New("relation \"agents\" does not exist")
	if err := classifySeedScan(broken); !errors.Is(err, broken) {
		t.Errorf("err = %v, want the scan failure surfaced", err)
	}
}
