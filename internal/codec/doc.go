// Package codec turns a [models.Payload] into compressed bytes and back.
//
// Encoding is two independent stream transforms: a [Serializer] produces the
// object-graph bytes, and a [Compressor] wraps them. Either can be swapped
// without touching the other. Decoding recognises every built-in compressor by
// its stream magic, so rows written before a compression change stay readable.
//
// The codec never inspects the classifier, trainer or pipeline it carries;
// their packages register their concrete types with the [Gob] serializer.
package codec
