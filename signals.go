package tumbler

import (
	"context"
	"time"

	"github.com/zoobzio/capitan"
)

// Signals for pipeline events.
var (
	SignalPipelineCreated = capitan.NewSignal("tumbler.pipeline.created", "Pipeline instantiated")
	SignalConditionAdded  = capitan.NewSignal("tumbler.condition.added", "Condition appended to pipeline")
	SignalEncryptStart    = capitan.NewSignal("tumbler.encrypt.start", "Encrypt fold beginning")
	SignalEncryptComplete = capitan.NewSignal("tumbler.encrypt.complete", "Encrypt fold finished")
	SignalDecryptStart    = capitan.NewSignal("tumbler.decrypt.start", "Decrypt fold beginning")
	SignalDecryptComplete = capitan.NewSignal("tumbler.decrypt.complete", "Decrypt fold finished")
	SignalGateRejected    = capitan.NewSignal("tumbler.gate.rejected", "Condition not satisfied on decrypt")
)

// Keys for typed event data.
var (
	KeyConditionCount = capitan.NewIntKey("condition_count")
	KeyConditionIndex = capitan.NewIntKey("condition_index")
	KeyConditionKind  = capitan.NewStringKey("condition_kind")
	KeySize           = capitan.NewIntKey("size")
	KeyDuration       = capitan.NewDurationKey("duration")
	KeyError          = capitan.NewErrorKey("error")
)

// emitPipelineCreated emits an event when a pipeline is created.
func emitPipelineCreated(ctx context.Context) {
	capitan.Emit(ctx, SignalPipelineCreated,
		KeyConditionCount.Field(0),
	)
}

// emitConditionAdded emits an event when a condition is appended.
func emitConditionAdded(ctx context.Context, index int, kind Kind) {
	capitan.Emit(ctx, SignalConditionAdded,
		KeyConditionIndex.Field(index),
		KeyConditionKind.Field(string(kind)),
	)
}

// emitEncryptStart emits an event when encrypt begins.
func emitEncryptStart(ctx context.Context, count, size int) {
	capitan.Emit(ctx, SignalEncryptStart,
		KeyConditionCount.Field(count),
		KeySize.Field(size),
	)
}

// emitEncryptComplete emits an event when encrypt finishes.
func emitEncryptComplete(ctx context.Context, count, size int, duration time.Duration, err error) {
	fields := completeFields(count, size, duration)
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalEncryptComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalEncryptComplete, fields...)
	}
}

// emitDecryptStart emits an event when decrypt begins.
func emitDecryptStart(ctx context.Context, count, size int) {
	capitan.Emit(ctx, SignalDecryptStart,
		KeyConditionCount.Field(count),
		KeySize.Field(size),
	)
}

// emitDecryptComplete emits an event when decrypt finishes.
func emitDecryptComplete(ctx context.Context, count, size int, duration time.Duration, err error) {
	fields := completeFields(count, size, duration)
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalDecryptComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalDecryptComplete, fields...)
	}
}

// emitGateRejected emits an event when decrypt stops at a closed gate.
func emitGateRejected(ctx context.Context, index int, kind Kind) {
	capitan.Error(ctx, SignalGateRejected,
		KeyConditionIndex.Field(index),
		KeyConditionKind.Field(string(kind)),
		KeyError.Field(ErrConditionNotSatisfied),
	)
}

func completeFields(count, size int, duration time.Duration) []capitan.Field {
	return []capitan.Field{
		KeyConditionCount.Field(count),
		KeySize.Field(size),
		KeyDuration.Field(duration),
	}
}
