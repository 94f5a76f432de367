// Package publish persists the facts of a successful run.
//
// A [Sink] receives one [facts.Record] per run. Available sinks:
//
//   - [WriterSink]: encodes to an io.Writer (stdout, a buffer)
//   - [FileSink]: encodes to a file, replaced atomically
//   - [RedisSink]: HSET of the facts into one hash, optional expiry
//   - [MongoSink]: one document per run in a collection
//
// [Open] selects a sink from a target string:
//
//	redis://localhost:6379/0?key=stackpin:facts&ttl=24h
//	mongodb://localhost:27017/stackpin?collection=facts
//	file:///var/lib/stackpin/facts.yaml
//	./facts.env
//
// Encodings are json, yaml, env and text (see [Format]).
package publish
