package core

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// LetterType is one kind of letter residents can request.
type LetterType struct {
	Jenis string `json:"jenisSurat"`
	Kode  string `json:"kode"`
	Nama  string `json:"nama"`
}

var letterTypes = []LetterType{
	{Jenis: "domisili", Kode: "SKD", Nama: "Surat Keterangan Domisili"},
	{Jenis: "tidak-mampu", Kode: "SKTM", Nama: "Surat Keterangan Tidak Mampu"},
	{Jenis: "usaha", Kode: "SKU", Nama: "Surat Keterangan Usaha"},
	{Jenis: "pengantar", Kode: "SP", Nama: "Surat Pengantar"},
	{Jenis: "kelahiran", Kode: "SKL", Nama: "Surat Keterangan Kelahiran"},
}

// LetterTypes returns a copy of the supported letter types.
func LetterTypes() []LetterType {
	return append([]LetterType(nil), letterTypes...)
}

func lookupLetterType(jenis string) (LetterType, bool) {
	for _, lt := range letterTypes {
		if lt.Jenis == jenis {
			return lt, true
		}
	}
	return LetterType{}, false
}

// ErrUnknownLetterType marks a submission that can never be processed. It is not retried.
var ErrUnknownLetterType = errors.New("unknown letter type")

var romanMonths = [...]string{"I", "II", "III", "IV", "V", "VI", "VII", "VIII", "IX", "X", "XI", "XII"}

// FormatLetterNumber renders NNN/KODE/ROMAN_MONTH/YEAR, e.g. 007/SKD/III/2024.
func FormatLetterNumber(seq int, kode string, t time.Time) string {
	return fmt.Sprintf("%03d/%s/%s/%d", seq, kode, romanMonths[t.Month()-1], t.Year())
}

// SubmissionProcessor turns a pending submission into an issued letter number.
type SubmissionProcessor struct {
	repo SubmissionRepository
	now  func() time.Time
}

func NewSubmissionProcessor(repo SubmissionRepository) *SubmissionProcessor {
	return &SubmissionProcessor{repo: repo, now: time.Now}
}

// Process handles one queue job (the submission id as a string) and returns the
// assigned letter number. A non-nil error means the job failed; ErrSubmissionNotPending
// means another worker already handled it.
func (p *SubmissionProcessor) Process(ctx context.Context, jobID string) (string, error) {
	id, err := strconv.ParseInt(jobID, 10, 64)
	if err != nil {
		return "", fmt.Errorf("parse job id %q: %w", jobID, err)
	}

	sub, err := p.repo.AcquirePending(ctx, id)
	if err != nil {
		return "", err
	}

	lt, ok := lookupLetterType(sub.JenisSurat)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownLetterType, sub.JenisSurat)
	}

	now := p.now()
	seq, err := p.repo.NextSequence(ctx, lt.Kode, now.Year())
	if err != nil {
		return "", fmt.Errorf("next sequence: %w", err)
	}
	nomor := FormatLetterNumber(seq, lt.Kode, now)
	if err := p.repo.Complete(ctx, id, nomor); err != nil {
		return "", fmt.Errorf("complete submission %d: %w", id, err)
	}
	return nomor, nil
}
