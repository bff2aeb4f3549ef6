package badger

import (
	"encoding/binary"
	"fmt"

	"github.com/poiesic/expertmatch/core"
)

// Key prefixes for different data types
const (
	attributeRecordPrefix   = "attrec"
	attributeTuplePrefix    = "attyna"
	expertRecordPrefix      = "exprec"
	expertIDSeq             = "exprecseq"
	experienceRecordPrefix  = "wexrec"
	experienceExpertPrefix  = "wexexp"
	experienceAttrPrefix    = "wexatt"
	experienceIDSeq         = "wexrecseq"
)

// makeAttributeKey generates a key for an attribute by ID.
func makeAttributeKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", attributeRecordPrefix, id))
}

// makeAttributeTupleKey generates a composite key for attribute lookup by (type, name).
// Format: prefix:type:name
func makeAttributeTupleKey(typ core.AttributeType, name string) []byte {
	prefix := attributeTuplePrefix + ":"
	buf := make([]byte, 0, len(prefix)+len(typ)+1+len(name))
	buf = append(buf, prefix...)
	buf = append(buf, typ...)
	buf = append(buf, ':')
	buf = append(buf, name...)
	return buf
}

// makeExpertKey generates a key for an expert by ID.
func makeExpertKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", expertRecordPrefix, id))
}

// makeExperienceKey generates a key for an experience by ID.
func makeExperienceKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", experienceRecordPrefix, id))
}

// makeExperienceExpertKey generates a composite key for the expert index.
// Format: prefix:expertID:experienceID
func makeExperienceExpertKey(expertID, experienceID core.ID) []byte {
	return makeCompositeKey(experienceExpertPrefix, expertID, experienceID)
}

// makePartialExperienceExpertKey generates a partial key for expert queries.
// Format: prefix:expertID
func makePartialExperienceExpertKey(expertID core.ID) []byte {
	return makePartialKey(experienceExpertPrefix, expertID)
}

// makeExperienceAttrKey generates a composite key for the attribute index.
// Format: prefix:attributeID:experienceID
func makeExperienceAttrKey(attributeID, experienceID core.ID) []byte {
	return makeCompositeKey(experienceAttrPrefix, attributeID, experienceID)
}

// makePartialExperienceAttrKey generates a partial key for attribute queries.
// Format: prefix:attributeID
func makePartialExperienceAttrKey(attributeID core.ID) []byte {
	return makePartialKey(experienceAttrPrefix, attributeID)
}

// makeCompositeKey builds prefix:idA:idB with the IDs in BigEndian order so
// lexicographic sort works correctly.
func makeCompositeKey(prefix string, idA, idB core.ID) []byte {
	prefixBytes := []byte(prefix + ":")
	buf := make([]byte, len(prefixBytes)+16)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], uint64(idA))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(idB))
	return buf
}

// makePartialKey builds prefix:idA for prefix scans over a composite index.
func makePartialKey(prefix string, idA core.ID) []byte {
	prefixBytes := []byte(prefix + ":")
	buf := make([]byte, len(prefixBytes)+8)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], uint64(idA))
	return buf
}
