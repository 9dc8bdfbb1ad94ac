// Package instance holds the process-wide singleton. The only way to obtain an
// Instance is through Get or MustGet.
package instance

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"

	log "github.com/golang/glog"
	"github.com/mesos/singleton-go/singleton"
	"github.com/mesos/singleton-go/singleton/metrics"
	"github.com/pborman/uuid"
	"github.com/pquerna/ffjson/ffjson"
)

const Name = "instance"

// Instance identifies the running process. All fields are fixed at construction.
type Instance struct {
	id       string
	hostname string
	pid      int
	created  time.Time
	ready    bool
}

// Description is the serialized form of an Instance.
type Description struct {
	ID       string    `json:"id"`
	Hostname string    `json:"hostname"`
	PID      int       `json:"pid"`
	Created  time.Time `json:"created"`
}

var (
	constructions uint64

	// swapped out by tests
	hostname = os.Hostname
	now      = time.Now

	accessor = singleton.New(build, singleton.Name(Name), singleton.WithHarness(metrics.DefaultHarness()))
)

func build() (*Instance, error) {
	host, err := hostname()
	if err != nil {
		return nil, fmt.Errorf("failed to look up host name: %w", err)
	}
	in := &Instance{
		id:       uuid.NewRandom().String(),
		hostname: host,
		pid:      os.Getpid(),
		created:  now(),
	}
	in.ready = true
	atomic.AddUint64(&constructions, 1)
	log.Infof("process instance %s created on %s (pid %d)", in.id, in.hostname, in.pid)
	return in, nil
}

// Get returns the process-wide Instance, building it on first use.
func Get() (*Instance, error) { return accessor.Get() }

// MustGet is like Get but panics if the Instance cannot be built.
func MustGet() *Instance { return accessor.MustGet() }

// Getter exposes Get through the singleton.Getter interface.
func Getter() singleton.Getter[Instance] { return singleton.GetFunc[Instance](Get) }

// Constructed reports whether the Instance exists yet.
func Constructed() bool { return accessor.Constructed() }

// Constructions returns how many Instances have been built. It never exceeds 1.
func Constructions() uint64 { return atomic.LoadUint64(&constructions) }

func (in *Instance) ID() string         { return in.id }
func (in *Instance) Hostname() string   { return in.hostname }
func (in *Instance) PID() int           { return in.pid }
func (in *Instance) Created() time.Time { return in.created }

// Ready is true for every Instance returned by Get.
func (in *Instance) Ready() bool { return in.ready }

func (in *Instance) String() string {
	return fmt.Sprintf("%s@%s[%d]", in.id, in.hostname, in.pid)
}

func (in *Instance) Description() Description {
	return Description{
		ID:       in.id,
		Hostname: in.hostname,
		PID:      in.pid,
		Created:  in.created,
	}
}

// Describe returns the JSON encoding of the Instance's Description.
func (in *Instance) Describe() ([]byte, error) {
	return ffjson.Marshal(in.Description())
}
