package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var (
	// keyStampsRe matches the three 14-digit stamps at the end of every object
	// key, e.g. "..._s20250562010204_e20250562019512_c20250562019587.nc".
	keyStampsRe = regexp.MustCompile(`_s(\d{14})_e(\d{14})_c(\d{14})\.nc$`)

	// keyChannelRe matches the mode/channel field of an imagery key,
	// e.g. "OR_ABI-L2-CMIPF-M6C13_G19_..." -> "13".
	keyChannelRe = regexp.MustCompile(`-M\dC(\d{2})_`)

	// channelRe validates an ABI channel identifier: C01 through C16.
	channelRe = regexp.MustCompile(`^C(0[1-9]|1[0-6])$`)
)

// Channel is a validated ABI channel identifier ("C01" .. "C16").
type Channel string

// DefaultChannel is clean longwave infrared, usable day and night.
const DefaultChannel = Channel("C13")

// ParseChannel validates a channel string. It accepts only the two-digit
// uppercase form used in object keys.
func ParseChannel(s string) (Channel, error) {
	if !channelRe.MatchString(s) {
		return "", fmt.Errorf("invalid ABI channel %q: must be C01 through C16", s)
	}
	return Channel(s), nil
}

// Number returns the channel's numeric value, e.g. C13 -> 13.
func (c Channel) Number() int {
	n, _ := strconv.Atoi(string(c)[1:])
	return n
}

// ScanTimes are the three timestamps embedded in an object key.
type ScanTimes struct {
	Start   time.Time
	End     time.Time
	Created time.Time
}

// ParseKeyTimes extracts the start/end/creation stamps from an object key.
// Pure and deterministic. Returns ErrMalformedKey when the key does not match
// the naming grammar; timestamps are never defaulted.
func ParseKeyTimes(key string) (ScanTimes, error) {
	m := keyStampsRe.FindStringSubmatch(key)
	if m == nil {
		return ScanTimes{}, fmt.Errorf("%w: %s", ErrMalformedKey, key)
	}

	var ts ScanTimes
	var err error
	if ts.Start, err = parseStamp(m[1]); err != nil {
		return ScanTimes{}, fmt.Errorf("%w: %s: start stamp: %v", ErrMalformedKey, key, err)
	}
	if ts.End, err = parseStamp(m[2]); err != nil {
		return ScanTimes{}, fmt.Errorf("%w: %s: end stamp: %v", ErrMalformedKey, key, err)
	}
	if ts.Created, err = parseStamp(m[3]); err != nil {
		return ScanTimes{}, fmt.Errorf("%w: %s: creation stamp: %v", ErrMalformedKey, key, err)
	}
	return ts, nil
}

// ParseKeyChannel extracts the ABI channel from an imagery key.
func ParseKeyChannel(key string) (Channel, error) {
	m := keyChannelRe.FindStringSubmatch(key)
	if m == nil {
		return "", fmt.Errorf("%w: %s: no channel field", ErrMalformedKey, key)
	}
	return Channel("C" + m[1]), nil
}

// parseStamp converts a 14-digit YYYYDDDHHMMSST field to a UTC instant.
// The trailing digit is tenths of a second.
func parseStamp(s string) (time.Time, error) {
	year, _ := strconv.Atoi(s[0:4])
	doy, _ := strconv.Atoi(s[4:7])
	hour, _ := strconv.Atoi(s[7:9])
	minute, _ := strconv.Atoi(s[9:11])
	sec, _ := strconv.Atoi(s[11:13])
	tenths, _ := strconv.Atoi(s[13:14])

	if doy < 1 || doy > 366 {
		return time.Time{}, fmt.Errorf("day of year %d out of range", doy)
	}
	if hour > 23 || minute > 59 || sec > 59 {
		return time.Time{}, fmt.Errorf("time %02d:%02d:%02d out of range", hour, minute, sec)
	}

	const nsPerTenth = int(time.Second / 10)
	t := time.Date(year, time.January, 1, hour, minute, sec, tenths*nsPerTenth, time.UTC)
	t = t.AddDate(0, 0, doy-1)
	if t.Year() != year {
		return time.Time{}, fmt.Errorf("day of year %d does not exist in %d", doy, year)
	}
	return t, nil
}

// ImageryHourPrefix builds the listing prefix for one hour bucket of imagery
// on the given channel. Scan mode is fixed at M6, the operational 10-minute
// flex mode.
func ImageryHourPrefix(satellite string, ch Channel, hour time.Time) string {
	hour = hour.UTC()
	return fmt.Sprintf("ABI-L2-CMIPF/%04d/%03d/%02d/OR_ABI-L2-CMIPF-M6C%02d_%s_",
		hour.Year(), hour.YearDay(), hour.Hour(), ch.Number(), satellite)
}

// LightningHourPrefix builds the listing prefix for one hour bucket of
// lightning data.
func LightningHourPrefix(satellite string, hour time.Time) string {
	hour = hour.UTC()
	return fmt.Sprintf("GLM-L2-LCFA/%04d/%03d/%02d/OR_GLM-L2-LCFA_%s_",
		hour.Year(), hour.YearDay(), hour.Hour(), satellite)
}
