// Package license gates application access. The state of an activation
// lives in a local JSON file; activation tokens issued by the vendor
// backend are signed JWTs verified offline. Licensing never touches
// order state: a denied check blocks new requests, nothing else.
package license

import (
	"encoding/json"
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Status is the access level derived from the stored license.
type Status string

const (
	// StatusActive means a verified activation within the online-check window.
	StatusActive Status = "active"
	// StatusGracePeriod allows access while the last successful check ages
	// out; the UI is expected to warn the operator.
	StatusGracePeriod Status = "grace_period"
	// StatusExpired blocks mutating operations until reactivation.
	StatusExpired Status = "expired"
)

// GracePeriod is how long the application keeps working after the last
// successful online verification.
const GracePeriod = 7 * 24 * time.Hour

// ErrInvalidToken is returned when an activation token fails signature
// or expiry verification.
var ErrInvalidToken = errors.New("invalid activation token")

// stored mirrors the on-disk license file.
type stored struct {
	Key             string `json:"key"`
	MachineID       string `json:"machine_id"`
	LastOnlineCheck int64  `json:"last_online_check"` // unix seconds
	Status          string `json:"status"`
}

// Validator reads, verifies and writes the local license file.
type Validator struct {
	path       string
	signingKey []byte
	now        func() time.Time
}

// NewValidator returns a Validator persisting to path and verifying
// activation tokens with signingKey (HS256).
func NewValidator(path, signingKey string) *Validator {
	return &Validator{path: path, signingKey: []byte(signingKey), now: time.Now}
}

// Status derives the current access level.
//
// No license file yet means a first run: access is granted as a grace
// period so a fresh install is usable before activation. An unreadable
// file counts as expired. Otherwise the age of the last successful
// check decides.
func (v *Validator) Status() Status {
	data, err := os.ReadFile(v.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return StatusGracePeriod
		}
		return StatusExpired
	}
	var s stored
	if err := json.Unmarshal(data, &s); err != nil {
		return StatusExpired
	}

	age := v.now().Sub(time.Unix(s.LastOnlineCheck, 0))
	if age >= GracePeriod {
		return StatusExpired
	}
	if s.Status == string(StatusActive) {
		return StatusActive
	}
	return StatusGracePeriod
}

// Activate verifies a vendor-signed activation token and persists the
// activation. The machine id is minted once on first activation and
// survives re-activations, so the vendor can tie a key to an install.
func (v *Validator) Activate(key, token string) (Status, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return v.signingKey, nil
	}, jwt.WithExpirationRequired(), jwt.WithTimeFunc(v.now))
	if err != nil || !parsed.Valid {
		return StatusExpired, ErrInvalidToken
	}

	machineID := v.machineID()
	s := stored{
		Key:             key,
		MachineID:       machineID,
		LastOnlineCheck: v.now().Unix(),
		Status:          string(StatusActive),
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return StatusExpired, err
	}
	if err := os.WriteFile(v.path, data, 0o600); err != nil {
		return StatusExpired, err
	}
	return StatusActive, nil
}

// machineID returns the existing install id or mints a new one.
func (v *Validator) machineID() string {
	if data, err := os.ReadFile(v.path); err == nil {
		var s stored
		if json.Unmarshal(data, &s) == nil && s.MachineID != "" {
			return s.MachineID
		}
	}
	return uuid.NewString()
}
