package giramais

// UsageReport is sent once per app start.
type UsageReport struct {
	DeviceID   string `json:"deviceId"`
	AppVersion string `json:"appVersion"`
	OS         string `json:"os"`
	OSVersion  string `json:"osVersion"`
}

// TripReport is sent when a trip starts. Either serial may be unknown.
type TripReport struct {
	DeviceID      string  `json:"deviceId"`
	BikeSerial    *string `json:"bikeSerial"`
	StationSerial *string `json:"stationSerial"`
}

// ErrorReport is sent when the app hits an error worth counting.
type ErrorReport struct {
	DeviceID     string  `json:"deviceId"`
	ErrorCode    string  `json:"errorCode"`
	ErrorMessage *string `json:"errorMessage"`
}

// RatingReport is the user's opinion of a bike after a trip.
type RatingReport struct {
	DeviceID   string `json:"deviceId"`
	BikeSerial string `json:"bikeSerial"`
	Rating     int    `json:"rating"`
}

// StatisticsResponse is what every statistics endpoint answers.
type StatisticsResponse struct {
	Success bool `json:"success"`
}

// Message is the message of the day. An empty Message means there is
// nothing to show.
type Message struct {
	Message string `json:"message"`
}
