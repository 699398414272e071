package errors

import "errors"

var (
	ErrInvalidVoteInput   = errors.New("invalid vote input")
	ErrUnknownVoteeKind   = errors.New("unknown votee kind")
	ErrUnknownVotingField = errors.New("unknown voting field")
	ErrInvalidVoteeKind   = errors.New("invalid votee kind registration")
	ErrVoteeNotFound      = errors.New("votee not found")
	ErrVoteeExists        = errors.New("votee already exists")
	ErrParentNotFound     = errors.New("parent document not found")
	ErrMalformedDocument  = errors.New("malformed votee document")
)
