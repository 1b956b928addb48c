package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Device is a field unit identified by a unique hardware address.
type Device struct {
	ID             uuid.UUID  `json:"id"`
	HardwareAddr   string     `json:"hardwareAddr"`
	Name           string     `json:"name"`
	DisplayName    *string    `json:"displayName,omitempty"`
	Location       string     `json:"location"`
	BoardClass     *string    `json:"boardClass,omitempty"`
	ResolutionBits int        `json:"resolutionBits"`
	SoilTypeID     *uuid.UUID `json:"soilTypeId,omitempty"`
	LastSeenAt     *time.Time `json:"lastSeenAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// DeviceUpdate carries the user-mutable fields (rename/relocate, profile).
type DeviceUpdate struct {
	DisplayName *string    `json:"displayName,omitempty"`
	Location    *string    `json:"location,omitempty"`
	SoilTypeID  *uuid.UUID `json:"soilTypeId,omitempty"`
}

// DevicesListResponse wraps a device collection for the read contract.
type DevicesListResponse struct {
	Data  []Device `json:"data"`
	Count int      `json:"count"`
}

// CanonicalAddr normalizes a hardware address to lowercase hex with no
// separators, so retries and case variants resolve to the same device row.
func CanonicalAddr(addr string) string {
	addr = strings.ToLower(strings.TrimSpace(addr))
	return strings.Map(func(r rune) rune {
		switch r {
		case ':', '-', '.', ' ':
			return -1
		}
		return r
	}, addr)
}
