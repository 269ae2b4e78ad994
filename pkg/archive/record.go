package archive

import (
	"encoding/hex"
	"fmt"
	"path"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/zeebo/blake3"

	"github.com/vango-dev/webcast/pkg/session"
)

// Record is one archived payload with the routing data of its container.
type Record struct {
	ReceivedAt  time.Time         `cbor:"1,keyasint"`
	SessionID   string            `cbor:"2,keyasint,omitempty"`
	ContainerID uint64            `cbor:"3,keyasint,omitempty"`
	SeqID       uint64            `cbor:"4,keyasint,omitempty"`
	Service     string            `cbor:"5,keyasint,omitempty"`
	Method      string            `cbor:"6,keyasint,omitempty"`
	Headers     map[string]string `cbor:"7,keyasint,omitempty"`
	Payload     []byte            `cbor:"8,keyasint"`
}

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error

	opts := cbor.CoreDetEncOptions()
	opts.Time = cbor.TimeRFC3339Nano
	encMode, err = opts.EncMode()
	if err != nil {
		panic("archive: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic("archive: CBOR decoder initialization failed: " + err.Error())
	}
}

// NewRecord builds a Record from a payload event.
func NewRecord(sessionID string, ev session.Event) *Record {
	r := &Record{
		ReceivedAt: ev.Time.UTC(),
		SessionID:  sessionID,
		Payload:    ev.Payload,
	}
	if c := ev.Container; c != nil {
		r.ContainerID = c.ID
		r.SeqID = c.SeqID
		r.Service = c.Service
		r.Method = c.Method
		r.Headers = c.Headers
	}
	return r
}

// Marshal encodes the record as deterministic CBOR.
func (r *Record) Marshal() ([]byte, error) {
	data, err := encMode.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("archive: encode record: %w", err)
	}
	return data, nil
}

// UnmarshalRecord decodes a record written by Marshal.
func UnmarshalRecord(data []byte) (*Record, error) {
	var r Record
	if err := decMode.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("archive: decode record: %w", err)
	}
	return &r, nil
}

// Key returns the object key for an encoded record received at t.
func Key(prefix string, t time.Time, encoded []byte) string {
	sum := blake3.Sum256(encoded)
	t = t.UTC()
	return path.Join(prefix,
		fmt.Sprintf("%04d/%02d/%02d", t.Year(), t.Month(), t.Day()),
		hex.EncodeToString(sum[:])+".cbor")
}
