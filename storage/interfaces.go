package storage

import "taxi-dashboard/models"

// TripSource streams the projected trip columns of one cached file.
type TripSource interface {
	ReadFile(path string, fn func(models.RawTrip)) (int, error)
}

// DashboardWriter persists a rendered dashboard document.
type DashboardWriter interface {
	Write(path string, doc []byte) error
}

var (
	_ TripSource      = (*TripReader)(nil)
	_ DashboardWriter = (*HTMLWriter)(nil)
)
