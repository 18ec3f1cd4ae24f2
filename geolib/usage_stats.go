package geolib

import (
	"encoding/json"
	"sync"
	"time"
)

// UsageStats collects usage statistics of a provider: how often it was
// asked, how often it has failed and how many races it has won.
type UsageStats struct {
	Name string

	mutex        sync.Mutex
	lastUsed     time.Time
	successCount uint64
	failureCount uint64
	winCount     uint64
}

func (u *UsageStats) Used(err error) {
	now := time.Now()

	u.mutex.Lock()
	defer u.mutex.Unlock()

	u.lastUsed = now

	if err == nil {
		u.successCount++
	} else {
		u.failureCount++
	}
}

func (u *UsageStats) Won() {
	u.mutex.Lock()
	defer u.mutex.Unlock()

	u.winCount++
}

func (u *UsageStats) MarshalJSON() ([]byte, error) {
	var lastUsedTime int64

	u.mutex.Lock()

	if !u.lastUsed.IsZero() {
		lastUsedTime = u.lastUsed.Unix()
	}

	rawStruct := struct {
		Name         string `json:"name"`
		LastUsed     int64  `json:"last_used"`
		SuccessCount uint64 `json:"success_count"`
		FailureCount uint64 `json:"failure_count"`
		WinCount     uint64 `json:"win_count"`
	}{
		Name:         u.Name,
		LastUsed:     lastUsedTime,
		SuccessCount: u.successCount,
		FailureCount: u.failureCount,
		WinCount:     u.winCount,
	}

	u.mutex.Unlock()

	return json.Marshal(&rawStruct)
}
