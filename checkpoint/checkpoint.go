// checkpoint creates CheckpointIO which stores and restores walk
// states in a bolt database.
package checkpoint

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/op/go-logging"

	bolt "go.etcd.io/bbolt"
)

// log is the global logging variable.
var log = logging.MustGetLogger("checkpoint")

// MAIN is the bucket name for all walk states.
var MAIN = []byte("main")

// ErrNotFound is returned if there is no checkpoint for a key.
var ErrNotFound = errors.New("checkpoint not found")

// CheckpointData stores checkpoint data.
type CheckpointData struct {
	// AA is the amino-acid sequence.
	AA string `json:"aa"`
	// CDS is the best coding sequence (RNA).
	CDS string `json:"cds"`
	// Step is the last completed step.
	Step int `json:"step"`
	// Fitness is the best fitness.
	Fitness float64 `json:"fitness"`
	// Stability is the objective name.
	Stability string `json:"stability"`
	// Seed of the walk.
	Seed int64 `json:"seed"`
	// Final is true if the walk finished.
	Final bool `json:"final"`
}

// CheckpointIO saves and loads checkpoints of a single run.
type CheckpointIO struct {
	db      *bolt.DB
	key     []byte
	last    time.Time
	seconds float64
}

// NewKey returns a random run key.
func NewKey() string {
	return uuid.NewString()
}

// NewCheckpointIO creates a new CheckpointIO. Checkpoints are
// considered old after the given number of seconds.
func NewCheckpointIO(db *bolt.DB, key []byte, seconds float64) (s *CheckpointIO) {
	s = &CheckpointIO{
		db:      db,
		key:     key,
		seconds: seconds,
	}
	s.SetNow()
	return
}

// Key returns the run key.
func (s *CheckpointIO) Key() string {
	return string(s.key)
}

// Save saves checkpoint to the database.
func (s *CheckpointIO) Save(data *CheckpointData) error {
	// Even if saving fails, we do not want to run this code too often.
	s.SetNow()
	dataB, err := json.Marshal(data)
	if err != nil {
		log.Error("Error serializing checkpoint", err)
		return err
	}
	err = SaveData(s.db, s.key, dataB)
	if err != nil {
		log.Error("Error saving checkpoint", err)
	}
	return err
}

// Load returns the checkpoint stored under the run key.
func (s *CheckpointIO) Load() (*CheckpointData, error) {
	return Load(s.db, s.key)
}

// Load returns the checkpoint stored under the key.
func Load(db *bolt.DB, key []byte) (*CheckpointData, error) {
	b, err := LoadData(db, key)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, ErrNotFound
	}

	var data *CheckpointData
	if err = json.Unmarshal(b, &data); err != nil {
		return nil, err
	}
	if data == nil || data.CDS == "" {
		return nil, ErrNotFound
	}

	if data.Final {
		log.Noticef("Found finished walk checkpoint %s (step=%v, fitness=%v)", key, data.Step, data.Fitness)
	} else {
		log.Noticef("Found unfinished walk checkpoint %s (step=%v, fitness=%v)", key, data.Step, data.Fitness)
	}
	return data, nil
}

// Old returns true if last checkpoint save time too long ago.
func (s *CheckpointIO) Old() bool {
	return time.Since(s.last).Seconds() > s.seconds
}

// SetNow sets last checkpoint time to now.
func (s *CheckpointIO) SetNow() {
	s.last = time.Now()
}

// SaveData saves values in bolt database.
func SaveData(db *bolt.DB, key []byte, data []byte) error {
	if db == nil {
		return nil
	}
	return db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(MAIN)
		if err != nil {
			return err
		}
		return b.Put(key, data)
	})
}

// LoadData loads data from bolt database. It returns nil if there is
// no such key.
func LoadData(db *bolt.DB, key []byte) ([]byte, error) {
	var data []byte
	if db == nil {
		return nil, nil
	}
	err := db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(MAIN)
		if b == nil {
			return nil
		}
		// v is only valid inside the transaction
		if v := b.Get(key); v != nil {
			data = append(make([]byte, 0, len(v)), v...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Keys returns all the stored run keys.
func Keys(db *bolt.DB) (keys []string, err error) {
	if db == nil {
		return nil, nil
	}
	err = db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(MAIN)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			keys = append(keys, string(k))
			return nil
		})
	})
	return
}
