// Package typeconv provides the value conversions a host converter
// typically needs when its column types are text-based: plain text, JSON
// with host-safe escaping, and the host's microsecond epoch for timestamps.
package typeconv

import (
	"encoding/json"
	"log"
	"regexp"
	"strings"
	"time"

	typeHelpers "github.com/turbot/go-kit/types"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// ValueString renders a value as text.
func ValueString(val any) string {
	return typeHelpers.ToString(val)
}

// unescaped unicode null is rejected by the host's JSON type
var nullCharRe = regexp.MustCompile(`((?:^|[^\\])(?:\\\\)*)(?:\\u0000)+`)

// JSONValueString marshals a value to JSON, stripping unescaped unicode
// null characters the host would reject.
func JSONValueString(val any) (string, error) {
	jsonBytes, err := json.Marshal(val)
	if err != nil {
		return "", err
	}
	valueString := string(jsonBytes)

	// remove unicode null char "\u0000", UNLESS escaped, i.e. "\\u0000"
	if strings.Contains(valueString, `\u0000`) {
		log.Printf("[TRACE] null unicode character detected in JSON value - removing if not escaped")
		valueString = nullCharRe.ReplaceAllString(valueString, "$1")
	}
	return valueString, nil
}

// the host stores timestamps as microseconds since Jan 1, 2000
var pgEpoch = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// TimeToPgTime converts a time to host epoch microseconds.
func TimeToPgTime(t time.Time) int64 {
	return int64(t.UTC().Sub(pgEpoch) / 1000)
}

// PgTimeToTimestamp converts host epoch microseconds to a protobuf
// timestamp.
func PgTimeToTimestamp(t int64) (*timestamppb.Timestamp, error) {
	ts := timestamppb.New(pgEpoch.Add(time.Duration(t*1000) * time.Nanosecond))
	if err := ts.CheckValid(); err != nil {
		return nil, err
	}
	return ts, nil
}
