// Package replsetpb defines the wire/persistence messages exchanged between
// a primary and its followers: the identity document a follower presents at
// handshake, and the progress row the primary keeps for it.
//
// SlaveDoc carries its own length-prefixed big-endian Marshal/Unmarshal pair
// rather than going through a protobuf library: the field set is small and
// fixed, and a hand-rolled codec keeps slavestore free of a generated .pb.go
// file and the protoc build step that would produce one. Handshake has no
// codec of its own.
package replsetpb

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Handshake is what a follower sends when it first identifies itself to the
// primary. Config is the follower's replica-set config document as it knows
// it; it is empty when the follower hasn't yet received one from the config
// service, in which case the ingress adapter synthesizes a placeholder.
type Handshake struct {
	RemoteID []byte // BSON-encoded object id of the follower
	Config   []byte // BSON-encoded config document, may be nil
}

func (h *Handshake) String() string { return fmt.Sprintf("Handshake{remote_id=%x}", h.RemoteID) }

// SlaveDoc is the document persisted into local.slaves: a follower's
// identity merged with the highest OpTime the primary has observed for it.
// The ghost-sync percolation path does not use it; it forwards the remote
// id and OpTime directly.
type SlaveDoc struct {
	RemoteID  []byte // BSON object id, also the persistence key
	Config    []byte // BSON config sub-document
	Namespace string // oplog namespace the follower is tailing
	SyncedTs  uint32 // OpTime.Timestamp.T
	SyncedInc uint32 // OpTime.Timestamp.I
	SyncedTerm int64 // OpTime.Term
}

func (s *SlaveDoc) String() string {
	return fmt.Sprintf("SlaveDoc{remote_id=%x ns=%s synced=%d.%d/%d}",
		s.RemoteID, s.Namespace, s.SyncedTs, s.SyncedInc, s.SyncedTerm)
}

// Marshal encodes s as a sequence of length-prefixed fields.
func (s *SlaveDoc) Marshal() ([]byte, error) {
	buf := make([]byte, 0, len(s.RemoteID)+len(s.Config)+len(s.Namespace)+32)
	buf = appendBytes(buf, s.RemoteID)
	buf = appendBytes(buf, s.Config)
	buf = appendBytes(buf, []byte(s.Namespace))
	buf = appendUint32(buf, s.SyncedTs)
	buf = appendUint32(buf, s.SyncedInc)
	buf = appendUint64(buf, uint64(s.SyncedTerm))
	return buf, nil
}

// Unmarshal decodes a buffer produced by Marshal.
func (s *SlaveDoc) Unmarshal(data []byte) error {
	var err error
	r := &reader{buf: data}
	if s.RemoteID, err = r.bytes(); err != nil {
		return err
	}
	if s.Config, err = r.bytes(); err != nil {
		return err
	}
	var ns []byte
	if ns, err = r.bytes(); err != nil {
		return err
	}
	s.Namespace = string(ns)
	if s.SyncedTs, err = r.uint32(); err != nil {
		return err
	}
	if s.SyncedInc, err = r.uint32(); err != nil {
		return err
	}
	term, err := r.uint64()
	if err != nil {
		return err
	}
	s.SyncedTerm = int64(term)
	return nil
}

func appendBytes(buf []byte, b []byte) []byte {
	var lb [4]byte
	binary.BigEndian.PutUint32(lb[:], uint32(len(b)))
	buf = append(buf, lb[:]...)
	return append(buf, b...)
}

func appendUint32(buf []byte, v uint32) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return append(buf, b[:]...)
}

func appendUint64(buf []byte, v uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return append(buf, b[:]...)
}

type reader struct {
	buf []byte
	off int
}

func (r *reader) bytes() ([]byte, error) {
	if r.off+4 > len(r.buf) {
		return nil, io.ErrUnexpectedEOF
	}
	n := int(binary.BigEndian.Uint32(r.buf[r.off:]))
	r.off += 4
	if r.off+n > len(r.buf) {
		return nil, io.ErrUnexpectedEOF
	}
	out := r.buf[r.off : r.off+n]
	r.off += n
	return out, nil
}

func (r *reader) uint32() (uint32, error) {
	if r.off+4 > len(r.buf) {
		return 0, io.ErrUnexpectedEOF
	}
	v := binary.BigEndian.Uint32(r.buf[r.off:])
	r.off += 4
	return v, nil
}

func (r *reader) uint64() (uint64, error) {
	if r.off+8 > len(r.buf) {
		return 0, io.ErrUnexpectedEOF
	}
	v := binary.BigEndian.Uint64(r.buf[r.off:])
	r.off += 8
	return v, nil
}
