package cmd

const (
	// Success is the same as EXIT_SUCCESS in C
	Success = iota

	// BadArgs passed to cli; not our fault.
	BadArgs

	// BadConfig means the config file could not be read or has bad values.
	BadConfig

	// ServerNotResponding means we could not connect to gserver
	// or it did not answer in timely fashion.
	ServerNotResponding

	// TransferFailed means the connection broke while sending
	// the request or while receiving the reply.
	TransferFailed

	// ProtocolViolation means gserver sent more than it should.
	ProtocolViolation

	// UnknownError is an uncategorized error, probably our fault.
	UnknownError
)
