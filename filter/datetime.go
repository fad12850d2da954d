/*
Copyright 2024 Blnk Finance Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package filter

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

var dateFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
}

// ParseDateTime parses value with the accepted layouts, interpreting values
// without an offset in loc.
func ParseDateTime(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	for _, format := range dateFormats {
		if t, err := time.ParseInLocation(format, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse date: %s", value)
}

// parseDay turns raw input into a calendar day in loc. Anything blank or
// unparseable yields ok=false and is logged at debug level only.
func parseDay(v interface{}, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.UTC
	}
	switch val := v.(type) {
	case time.Time:
		if val.IsZero() {
			return time.Time{}, false
		}
		return val.In(loc), true
	case string:
		if IsBlank(val) {
			return time.Time{}, false
		}
		t, err := ParseDateTime(val, loc)
		if err != nil {
			logrus.WithField("value", val).Debug("ignoring unparseable date filter input")
			return time.Time{}, false
		}
		return t.In(loc), true
	}
	return time.Time{}, false
}

// DayBounds returns the start of t's calendar day and the start of the next
// one, so the day is the half-open range [start, next).
func DayBounds(t time.Time) (start time.Time, next time.Time) {
	y, m, d := t.Date()
	start = time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}
