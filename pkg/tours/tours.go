// Package tours holds tours, their logs and the rules that derive a tour's
// popularity and child-friendliness from its logs.
package tours

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	LogTimeLayout   = "2006-01-02T15:04:05"
	TotalTimeLayout = "15:04:05"
)

// Seconds are optional on input; values are stored and returned with them.
var (
	logTimeLayouts   = []string{LogTimeLayout, "2006-01-02T15:04"}
	totalTimeLayouts = []string{TotalTimeLayout, "15:04"}
)

func parseAny(layouts []string, s string) (time.Time, error) {
	var err error
	for _, layout := range layouts {
		var t time.Time
		if t, err = time.Parse(layout, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, err
}

type Tour struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	StartLocation string  `json:"startLocation"`
	EndLocation   string  `json:"endLocation"`
	TransportType string  `json:"transportType"`
	Distance      float64 `json:"distance"`
	EstimatedTime string  `json:"estimatedTime"`
	MapImagePath  string  `json:"mapImagePath"`
	Popularity    int     `json:"popularity"`
	// ChildFriendliness is nil until the tour has at least one log.
	ChildFriendliness *float64 `json:"childFriendliness"`
}

type TourLog struct {
	ID            int64   `json:"id"`
	TourID        int64   `json:"tourId"`
	LogTime       LogTime `json:"logTime"`
	Comment       string  `json:"comment"`
	Difficulty    int     `json:"difficulty"`
	TotalDistance float64 `json:"totalDistance"`
	TotalTime     string  `json:"totalTime"`
	Rating        int     `json:"rating"`
}

// LogTime is a local date-time without zone, encoded as 2006-01-02T15:04:05.
type LogTime struct {
	time.Time
}

// ParseLogTime accepts 2006-01-02T15:04:05 and 2006-01-02T15:04.
func ParseLogTime(s string) (LogTime, error) {
	t, err := parseAny(logTimeLayouts, s)
	if err != nil {
		return LogTime{}, fmt.Errorf("parse log time: %w", err)
	}

	return LogTime{Time: t}, nil
}

// NormalizeTotalTime turns HH:MM or HH:MM:SS into HH:MM:SS.
func NormalizeTotalTime(s string) (string, error) {
	t, err := parseAny(totalTimeLayouts, s)
	if err != nil {
		return "", fmt.Errorf("parse total time: %w", err)
	}

	return t.Format(TotalTimeLayout), nil
}

func (t LogTime) String() string {
	return t.Format(LogTimeLayout)
}

func (t LogTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *LogTime) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}

	parsed, err := ParseLogTime(s)
	if err != nil {
		return err
	}

	*t = parsed
	return nil
}

// TourInput is what clients send to create or update a tour. Distance and
// estimated time are always computed by the router.
type TourInput struct {
	Name          string `json:"name" validate:"required"`
	Description   string `json:"description"`
	StartLocation string `json:"startLocation" validate:"required"`
	EndLocation   string `json:"endLocation" validate:"required"`
	TransportType string `json:"transportType" validate:"required"`
	MapImagePath  string `json:"mapImagePath"`
}

// LogInput is what clients send to create or update a log. Nil fields are
// missing on create and left untouched on update.
type LogInput struct {
	LogTime       *string  `json:"logTime" validate:"omitempty,logtime"`
	Comment       *string  `json:"comment"`
	Difficulty    *int     `json:"difficulty" validate:"omitempty,min=1,max=5"`
	TotalDistance *float64 `json:"totalDistance" validate:"omitempty,gte=0"`
	TotalTime     *string  `json:"totalTime" validate:"omitempty,totaltime"`
	Rating        *int     `json:"rating" validate:"omitempty,min=1,max=5"`
}
