package interval

import (
	"errors"
	"testing"
	"time"
)

func at(hour, min int) time.Time {
	return time.Date(2025, time.December, 20, hour, min, 0, 0, time.UTC)
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name           string
		aStart, aEnd   time.Time
		bStart, bEnd   time.Time
		want           bool
	}{
		{
			name:   "touching endpoints do not overlap",
			aStart: at(10, 0), aEnd: at(11, 0),
			bStart: at(11, 0), bEnd: at(12, 0),
			want: false,
		},
		{
			name:   "identical intervals overlap",
			aStart: at(10, 0), aEnd: at(11, 0),
			bStart: at(10, 0), bEnd: at(11, 0),
			want: true,
		},
		{
			name:   "partial overlap",
			aStart: at(14, 0), aEnd: at(15, 0),
			bStart: at(14, 30), bEnd: at(15, 30),
			want: true,
		},
		{
			name:   "containment overlaps",
			aStart: at(9, 0), aEnd: at(17, 0),
			bStart: at(12, 0), bEnd: at(13, 0),
			want: true,
		},
		{
			name:   "disjoint intervals",
			aStart: at(8, 0), aEnd: at(9, 0),
			bStart: at(13, 0), bEnd: at(14, 0),
			want: false,
		},
		{
			name:   "one minute apart",
			aStart: at(10, 0), aEnd: at(10, 59),
			bStart: at(11, 0), bEnd: at(12, 0),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Overlaps(tt.aStart, tt.aEnd, tt.bStart, tt.bEnd)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Overlaps() = %v, want %v", got, tt.want)
			}

			// Overlap is symmetric.
			mirror, err := Overlaps(tt.bStart, tt.bEnd, tt.aStart, tt.aEnd)
			if err != nil {
				t.Fatalf("unexpected error on mirrored call: %v", err)
			}
			if mirror != got {
				t.Errorf("Overlaps is not symmetric: %v vs %v", got, mirror)
			}
		})
	}
}

func TestOverlapsReflexive(t *testing.T) {
	starts := []time.Time{at(0, 0), at(9, 30), at(23, 0)}
	for _, start := range starts {
		end := start.Add(45 * time.Minute)
		got, err := Overlaps(start, end, start, end)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !got {
			t.Errorf("interval starting %v does not overlap itself", start)
		}
	}
}

func TestOverlapsInvalidInterval(t *testing.T) {
	tests := []struct {
		name         string
		aStart, aEnd time.Time
		bStart, bEnd time.Time
	}{
		{
			name:   "first interval reversed",
			aStart: at(11, 0), aEnd: at(10, 0),
			bStart: at(10, 0), bEnd: at(11, 0),
		},
		{
			name:   "second interval empty",
			aStart: at(10, 0), aEnd: at(11, 0),
			bStart: at(12, 0), bEnd: at(12, 0),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Overlaps(tt.aStart, tt.aEnd, tt.bStart, tt.bEnd)
			if !errors.Is(err, ErrInvalidInterval) {
				t.Errorf("expected ErrInvalidInterval, got %v", err)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	if err := Validate(at(10, 0), at(11, 0)); err != nil {
		t.Errorf("valid interval rejected: %v", err)
	}
	if err := Validate(at(10, 0), at(10, 0)); !errors.Is(err, ErrInvalidInterval) {
		t.Errorf("equal instants should be invalid, got %v", err)
	}
	if err := Validate(at(11, 0), at(10, 0)); !errors.Is(err, ErrInvalidInterval) {
		t.Errorf("reversed interval should be invalid, got %v", err)
	}
}

func TestIsPast(t *testing.T) {
	now := at(12, 0)

	if !IsPast(at(11, 59), now) {
		t.Error("instant before now should be past")
	}
	if IsPast(now, now) {
		t.Error("instant equal to now is not strictly past")
	}
	if IsPast(at(12, 1), now) {
		t.Error("future instant reported as past")
	}
}
