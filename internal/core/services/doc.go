// Package services implements the core pipeline behind the driving ports.
//
// The Encoder partitions texts into bounded sub-batches over the external
// embedding capability. PipelineService composes chunking, encoding and
// the record store into the ingest and search operations.
package services
