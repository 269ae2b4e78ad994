// Package archive stores decoded webcast payloads.
//
// Each payload becomes a Record, encoded as deterministic CBOR and written
// to an object store under a content-addressed key:
//
//	<prefix>/YYYY/MM/DD/<blake3-hex>.cbor
//
// The date is the record's receive time in UTC; the hash covers the encoded
// record, so writing the same record twice lands on the same key.
//
// # Usage
//
//	client := s3.New(s3.Options{Region: "us-east-1", Credentials: creds})
//	store := archive.NewS3Store(client, "webcast-payloads", "webcast")
//
//	a := archive.NewArchiver(store, archive.WithLogger(logger))
//	defer a.Close()
//
//	for ev := range sess.Events() {
//	    if ev.Kind == session.EventPayload {
//	        a.Submit(archive.NewRecord(sess.ID(), ev))
//	    }
//	}
package archive
