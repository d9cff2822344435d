package constants

import "time"

var PinConfig = struct {
	Length int
}{
	Length: 4,
}

var ContactCardConfig = struct {
	MIMEType  string
	Extension string
}{
	MIMEType:  "text/vcard",
	Extension: ".vcf",
}

var SocialConfig = struct {
	LinkedInPrefix string
}{
	LinkedInPrefix: "https://www.linkedin.com",
}

var APIConfig = struct {
	AttendeePath string
	Timeout      time.Duration
}{
	AttendeePath: "/attendee",
	Timeout:      10 * time.Second,
}

var SessionConfig = struct {
	CookieName   string
	TTL          time.Duration
	KeyPrefix    string
	LoadingGrace time.Duration // Loading 상태가 timeout+grace 를 넘기면 AwaitingPin 으로 복구
}{
	CookieName:   "attendee_session",
	TTL:          30 * time.Minute,
	KeyPrefix:    "attendee:session:",
	LoadingGrace: 5 * time.Second,
}

var RedisConfig = struct {
	ReadyTimeout time.Duration
}{
	ReadyTimeout: 5 * time.Second,
}

var HealthConfig = struct {
	ProbeTimeout time.Duration
}{
	ProbeTimeout: 2 * time.Second,
}

var PlaceholderSize = struct {
	Width  int
	Height int
}{
	Width:  150,
	Height: 20,
}
