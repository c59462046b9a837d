package core

import (
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	AttributeKeyChainID        = attribute.Key("chain_id")
	AttributeKeyEmitterChain   = attribute.Key("emitter_chain")
	AttributeKeyEmitterAddress = attribute.Key("emitter_address")
	AttributeKeySequence       = attribute.Key("sequence")
	AttributeKeyStatus         = attribute.Key("status")
	AttributeKeyReason         = attribute.Key("reason")
	AttributeKeyTxHash         = attribute.Key("tx_hash")
	AttributeKeyAttempt        = attribute.Key("attempt")
	AttributeKeyPackage        = attribute.Key("package")
)

// AttributeGroup prefixes the given key to all attributes.
//
// For example, if the key is "foo" and the key of an attribute is "bar", the new key will be "foo.bar".
func AttributeGroup(key string, attributes ...attribute.KeyValue) []attribute.KeyValue {
	newAttrs := make([]attribute.KeyValue, 0, len(attributes))
	for _, attr := range attributes {
		newAttrs = append(newAttrs, attribute.KeyValue{
			Key:   attribute.Key(key + "." + string(attr.Key)),
			Value: attr.Value,
		})
	}
	return newAttrs
}

// EmitterAttributes describes an emitter. Chain ids are rendered as strings to keep
// metric series readable.
func EmitterAttributes(chain fmt.Stringer, emitter fmt.Stringer) []attribute.KeyValue {
	return []attribute.KeyValue{
		AttributeKeyEmitterChain.String(chain.String()),
		AttributeKeyEmitterAddress.String(emitter.String()),
	}
}

func MessageAttributes(id MessageID) []attribute.KeyValue {
	return append(
		EmitterAttributes(id.EmitterChain, id.EmitterAddress),
		// the attribute package does not support uint64
		AttributeKeySequence.String(fmt.Sprint(id.Sequence)),
	)
}

func WithMessageAttributes(id MessageID) trace.SpanStartOption {
	return trace.WithAttributes(AttributeGroup("message", MessageAttributes(id)...)...)
}

func WithChainAttributes(chainID string) trace.SpanStartOption {
	return trace.WithAttributes(AttributeKeyChainID.String(chainID))
}
