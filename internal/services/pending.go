package services

import (
	"strings"
	"time"

	"newsreader/internal/utils"
)

// PendingRegistration holds a registration until its email is verified.
// Unverified users are never written to the database; the entry lives in
// the process-wide TTL cache and is promoted to a User row on verify.
type PendingRegistration struct {
	Username     string
	Email        string
	PasswordHash string
	Code         string
	CodeExpires  time.Time
}

const (
	pendingTTL = 30 * time.Minute
	otpExpiry  = 10 * time.Minute
	otpLength  = 6
)

// PendingStore manages pending registrations on top of the global cache.
type PendingStore struct {
	cache *utils.GlobalCache
}

var pendingStore *PendingStore

// GetPendingStore returns the pending-registration store singleton.
func GetPendingStore() *PendingStore {
	if pendingStore == nil {
		pendingStore = &PendingStore{cache: utils.GetCache()}
	}
	return pendingStore
}

func pendingKey(email string) string {
	return "pending:register:" + strings.ToLower(email)
}

// Put stores a pending registration with a fresh OTP and returns the code.
func (s *PendingStore) Put(username, email, passwordHash string) string {
	code := utils.GenerateRandomCode(otpLength)
	s.cache.Set(pendingKey(email), &PendingRegistration{
		Username:     username,
		Email:        strings.ToLower(email),
		PasswordHash: passwordHash,
		Code:         code,
		CodeExpires:  time.Now().Add(otpExpiry),
	}, pendingTTL)
	return code
}

// Get returns the pending registration for email, or nil.
func (s *PendingStore) Get(email string) *PendingRegistration {
	val := s.cache.Get(pendingKey(email))
	if val == nil {
		return nil
	}
	reg, ok := val.(*PendingRegistration)
	if !ok {
		return nil
	}
	return reg
}

// Refresh regenerates the OTP for an existing entry and returns the new
// code, or "" if no entry exists.
func (s *PendingStore) Refresh(email string) string {
	reg := s.Get(email)
	if reg == nil {
		return ""
	}
	code := utils.GenerateRandomCode(otpLength)
	reg.Code = code
	reg.CodeExpires = time.Now().Add(otpExpiry)
	s.cache.Set(pendingKey(email), reg, pendingTTL)
	return code
}

// Verify checks the code for email. It returns the registration exactly
// once: on success the entry is removed, so a replay of the same code
// fails.
func (s *PendingStore) Verify(email, code string) *PendingRegistration {
	reg := s.Get(email)
	if reg == nil {
		return nil
	}
	if code == "" || reg.Code != code || time.Now().After(reg.CodeExpires) {
		return nil
	}
	s.cache.Delete(pendingKey(email))
	return reg
}

// Delete drops the entry for email.
func (s *PendingStore) Delete(email string) {
	s.cache.Delete(pendingKey(email))
}
