package domain

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"
)

// DateLayout — формат календарной даты в JSON (ISO-8601, без времени).
const DateLayout = "2006-01-02"

// Date — календарная дата без времени и часового пояса.
// Сравнима через ==, поэтому Movie тоже остаётся сравнимым значением.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate — конструктор даты (значения нормализуются через time.Date).
func NewDate(year int, month time.Month, day int) Date {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// ParseDate — разбирает строку вида YYYY-MM-DD.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
}

func (d Date) String() string { return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day) }

// Compare — -1, 0, +1 как у cmp.Compare.
func (d Date) Compare(other Date) int {
	if c := cmp.Compare(d.Year, other.Year); c != 0 {
		return c
	}
	if c := cmp.Compare(d.Month, other.Month); c != 0 {
		return c
	}
	return cmp.Compare(d.Day, other.Day)
}

func (d Date) Before(other Date) bool { return d.Compare(other) < 0 }

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" || len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("date must be a %q string, got %s", DateLayout, s)
	}
	parsed, err := ParseDate(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Movie — минимальная запись о фильме, которую отдаёт сервис.
type Movie struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	ReleaseDate Date   `json:"releaseDate"`
}

// SortByReleaseDate — стабильная сортировка по дате выхода (по возрастанию);
// при равных датах сохраняется исходный порядок.
func SortByReleaseDate(movies []Movie) {
	slices.SortStableFunc(movies, func(a, b Movie) int {
		return a.ReleaseDate.Compare(b.ReleaseDate)
	})
}
