package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/HappySolarCoder/happy-solar-referrals/internal/domain"
)

// FileReferralsRepo persists the collection as a single JSON array,
// rewritten in full on every mutation. The write goes to a temp file in
// the same directory and is renamed over the old one, so the file is
// always a valid whole-collection document even if the process dies
// mid-write.
type FileReferralsRepo struct {
	mu   sync.Mutex
	path string
}

func NewFileReferralsRepo(path string) (*FileReferralsRepo, error) {
	r := &FileReferralsRepo{path: path}
	// Fail at construction if the file exists but is unreadable garbage,
	// rather than on the first request.
	if _, err := r.load(); err != nil {
		return nil, err
	}
	return r, nil
}

var _ ReferralsRepo = (*FileReferralsRepo)(nil)

func (r *FileReferralsRepo) load() ([]domain.Referral, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", r.path, err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	var records []domain.Referral
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode %s: %w", r.path, err)
	}
	return records, nil
}

func (r *FileReferralsRepo) save(records []domain.Referral) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode referrals: %w", err)
	}
	dir := filepath.Dir(r.path)
	tmp, err := os.CreateTemp(dir, ".referrals-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", r.path, err)
	}
	return nil
}

func (r *FileReferralsRepo) Create(_ context.Context, sub domain.NewReferral) (*domain.Referral, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.load()
	if err != nil {
		return nil, err
	}
	rec := newRecord(sub)
	records = append(records, rec)
	if err := r.save(records); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *FileReferralsRepo) List(_ context.Context) ([]domain.Referral, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.load()
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *FileReferralsRepo) Update(_ context.Context, id string, patch map[string]any) (*domain.Referral, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.load()
	if err != nil {
		return nil, err
	}
	idx := -1
	for i := range records {
		if records[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrNotFound
	}
	merged, err := applyPatch(records[idx], patch)
	if err != nil {
		return nil, err
	}
	records[idx] = merged
	if err := r.save(records); err != nil {
		return nil, err
	}
	return &merged, nil
}
