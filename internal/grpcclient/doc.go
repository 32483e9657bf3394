// Package grpcclient performs dynamic unary gRPC calls. Method
// descriptors are parsed from a .proto file at startup, so no generated
// stubs are needed for the target service.
package grpcclient
