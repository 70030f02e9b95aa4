package model

import "fmt"

// MinSec is a game length broken into minutes and seconds.
type MinSec struct {
	Minutes int `json:"minutes"`
	Seconds int `json:"seconds"`
}

func (m MinSec) String() string {
	return fmt.Sprintf("%d:%02d", m.Minutes, m.Seconds)
}

// DHMS is a long duration broken into days, hours, minutes and seconds.
type DHMS struct {
	Days    int `json:"days"`
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
	Seconds int `json:"seconds"`
}

func (d DHMS) String() string {
	return fmt.Sprintf("%dd %02dh %02dm %02ds", d.Days, d.Hours, d.Minutes, d.Seconds)
}

// MinutesSeconds splits a length in seconds. Negative input is clamped to zero.
func MinutesSeconds(total int) MinSec {
	if total < 0 {
		total = 0
	}
	return MinSec{Minutes: total / 60, Seconds: total % 60}
}

// DaysHoursMinutesSeconds splits a total duration in seconds.
func DaysHoursMinutesSeconds(total int) DHMS {
	if total < 0 {
		total = 0
	}
	const (
		minute = 60
		hour   = 60 * minute
		day    = 24 * hour
	)
	rem := total % day
	return DHMS{
		Days:    total / day,
		Hours:   rem / hour,
		Minutes: rem % hour / minute,
		Seconds: rem % minute,
	}
}
