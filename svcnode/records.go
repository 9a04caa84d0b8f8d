package svcnode

import "github.com/atcsecure/dcrutilitynode/snwire"

// messageRecord is a (peerAddress, message, time) triple, used to detect
// replays and throttle sninfo/snlist per peer, per spec.md §3.
type messageRecord struct {
	peerAddress string
	message     snwire.Message
	time        int64
}

// recordTTL returns the eviction TTL for a record carrying cmd, per
// spec.md §4.1: "sninfo: 5 min-1h range; snlist: 1-4h; others: 1h default".
func recordTTL(cmd snwire.Command) int64 {
	switch cmd {
	case snwire.CmdGetInfo:
		return int64(GetInfoRecordTTL.Seconds())
	case snwire.CmdGetList:
		return int64(GetListRecordTTL.Seconds())
	default:
		return int64(DefaultRecordTTL.Seconds())
	}
}

// recordStore holds the bounded request/response lists used for anti-spam
// dedup of sninfo/snlist traffic.
type recordStore struct {
	requests  []messageRecord
	responses []messageRecord
}

func newRecordStore() *recordStore {
	return &recordStore{}
}

// hasMatch reports whether list already contains a record from
// peerAddress whose message.Compare(msg) is true.
func hasMatch(list []messageRecord, peerAddress string, msg snwire.Message) bool {
	for _, r := range list {
		if r.peerAddress == peerAddress && r.message.Compare(msg) {
			return true
		}
	}
	return false
}

// HasRequestRecord reports whether a matching request record already exists
// for peerAddress.
func (s *recordStore) HasRequestRecord(peerAddress string, msg snwire.Message) bool {
	return hasMatch(s.requests, peerAddress, msg)
}

// HasResponseRecord reports whether a matching response record already
// exists for peerAddress.
func (s *recordStore) HasResponseRecord(peerAddress string, msg snwire.Message) bool {
	return hasMatch(s.responses, peerAddress, msg)
}

// RecordRequest appends a request record.
func (s *recordStore) RecordRequest(peerAddress string, msg snwire.Message, now int64) {
	s.requests = append(s.requests, messageRecord{peerAddress, msg, now})
}

// RecordResponse appends a response record.
func (s *recordStore) RecordResponse(peerAddress string, msg snwire.Message, now int64) {
	s.responses = append(s.responses, messageRecord{peerAddress, msg, now})
}

// Clean evicts every record older than its command's TTL.
func (s *recordStore) Clean(now int64) {
	s.requests = cleanList(s.requests, now)
	s.responses = cleanList(s.responses, now)
}

func cleanList(list []messageRecord, now int64) []messageRecord {
	kept := list[:0]
	for _, r := range list {
		if now-r.time < recordTTL(r.message.Command()) {
			kept = append(kept, r)
		}
	}
	return kept
}
