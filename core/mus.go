package core

import (
	"math"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// Binary serializers for the stored record types, built on mus-go primitives.
// Wire layout is length-prefixed and varint-encoded throughout. Timestamps
// are stored as Unix microseconds; the zero time is preserved through a
// sentinel so round trips are exact.

// Serializer values used by the storage layer.
var (
	IDMUS         = idMUS{}
	AttributeMUS  = attributeMUS{}
	ExpertMUS     = expertMUS{}
	ExperienceMUS = experienceMUS{}
)

const zeroTimeSentinel = math.MinInt64

type idMUS struct{}

func (idMUS) Marshal(id ID, bs []byte) (n int) {
	return varint.Uint64.Marshal(uint64(id), bs)
}

func (idMUS) Unmarshal(bs []byte) (id ID, n int, err error) {
	v, n, err := varint.Uint64.Unmarshal(bs)
	return ID(v), n, err
}

func (idMUS) Size(id ID) (size int) {
	return varint.Uint64.Size(uint64(id))
}

func (idMUS) Skip(bs []byte) (n int, err error) {
	return varint.Uint64.Skip(bs)
}

type timeMUS struct{}

func (timeMUS) Marshal(t time.Time, bs []byte) (n int) {
	v := int64(zeroTimeSentinel)
	if !t.IsZero() {
		v = t.UnixMicro()
	}
	return varint.Int64.Marshal(v, bs)
}

func (timeMUS) Unmarshal(bs []byte) (t time.Time, n int, err error) {
	v, n, err := varint.Int64.Unmarshal(bs)
	if err != nil {
		return time.Time{}, n, err
	}
	if v == zeroTimeSentinel {
		return time.Time{}, n, nil
	}
	return time.UnixMicro(v).UTC(), n, nil
}

func (timeMUS) Size(t time.Time) (size int) {
	v := int64(zeroTimeSentinel)
	if !t.IsZero() {
		v = t.UnixMicro()
	}
	return varint.Int64.Size(v)
}

type vectorMUS struct{}

func (vectorMUS) Marshal(v []float32, bs []byte) (n int) {
	n = varint.Int.Marshal(len(v), bs)
	for _, f := range v {
		n += varint.Float32.Marshal(f, bs[n:])
	}
	return n
}

func (vectorMUS) Unmarshal(bs []byte) (v []float32, n int, err error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil || length == 0 {
		return nil, n, err
	}
	v = make([]float32, length)
	for i := 0; i < length; i++ {
		var n1 int
		v[i], n1, err = varint.Float32.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return nil, n, err
		}
	}
	return v, n, nil
}

func (vectorMUS) Size(v []float32) (size int) {
	size = varint.Int.Size(len(v))
	for _, f := range v {
		size += varint.Float32.Size(f)
	}
	return size
}

type idSliceMUS struct{}

func (idSliceMUS) Marshal(ids []ID, bs []byte) (n int) {
	n = varint.Int.Marshal(len(ids), bs)
	for _, id := range ids {
		n += IDMUS.Marshal(id, bs[n:])
	}
	return n
}

func (idSliceMUS) Unmarshal(bs []byte) (ids []ID, n int, err error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil || length == 0 {
		return nil, n, err
	}
	ids = make([]ID, length)
	for i := 0; i < length; i++ {
		var n1 int
		ids[i], n1, err = IDMUS.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return nil, n, err
		}
	}
	return ids, n, nil
}

func (idSliceMUS) Size(ids []ID) (size int) {
	size = varint.Int.Size(len(ids))
	for _, id := range ids {
		size += IDMUS.Size(id)
	}
	return size
}

type metadataMUS struct{}

func (metadataMUS) Marshal(m map[string]string, bs []byte) (n int) {
	n = varint.Int.Marshal(len(m), bs)
	for k, v := range m {
		n += ord.String.Marshal(k, bs[n:])
		n += ord.String.Marshal(v, bs[n:])
	}
	return n
}

func (metadataMUS) Unmarshal(bs []byte) (m map[string]string, n int, err error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil || length == 0 {
		return nil, n, err
	}
	m = make(map[string]string, length)
	for i := 0; i < length; i++ {
		var k, v string
		var n1 int
		k, n1, err = ord.String.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return nil, n, err
		}
		v, n1, err = ord.String.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return nil, n, err
		}
		m[k] = v
	}
	return m, n, nil
}

func (metadataMUS) Size(m map[string]string) (size int) {
	size = varint.Int.Size(len(m))
	for k, v := range m {
		size += ord.String.Size(k)
		size += ord.String.Size(v)
	}
	return size
}

var (
	timeSer     = timeMUS{}
	vectorSer   = vectorMUS{}
	idSliceSer  = idSliceMUS{}
	metadataSer = metadataMUS{}
)

type attributeMUS struct{}

func (attributeMUS) Marshal(a Attribute, bs []byte) (n int) {
	n = IDMUS.Marshal(a.Id, bs)
	n += ord.String.Marshal(a.Name, bs[n:])
	n += ord.String.Marshal(string(a.Type), bs[n:])
	n += ord.String.Marshal(a.Summary, bs[n:])
	n += vectorSer.Marshal(a.Embedding, bs[n:])
	n += IDMUS.Marshal(a.ParentId, bs[n:])
	n += varint.Int.Marshal(a.Depth, bs[n:])
	n += timeSer.Marshal(a.InsertedAt, bs[n:])
	n += timeSer.Marshal(a.UpdatedAt, bs[n:])
	return n
}

func (attributeMUS) Unmarshal(bs []byte) (a Attribute, n int, err error) {
	var n1 int
	a.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return a, n, err
	}
	a.Name, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return a, n, err
	}
	var typ string
	typ, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return a, n, err
	}
	a.Type = AttributeType(typ)
	a.Summary, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return a, n, err
	}
	a.Embedding, n1, err = vectorSer.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return a, n, err
	}
	a.ParentId, n1, err = IDMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return a, n, err
	}
	a.Depth, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return a, n, err
	}
	a.InsertedAt, n1, err = timeSer.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return a, n, err
	}
	a.UpdatedAt, n1, err = timeSer.Unmarshal(bs[n:])
	n += n1
	return a, n, err
}

func (attributeMUS) Size(a Attribute) (size int) {
	size = IDMUS.Size(a.Id)
	size += ord.String.Size(a.Name)
	size += ord.String.Size(string(a.Type))
	size += ord.String.Size(a.Summary)
	size += vectorSer.Size(a.Embedding)
	size += IDMUS.Size(a.ParentId)
	size += varint.Int.Size(a.Depth)
	size += timeSer.Size(a.InsertedAt)
	size += timeSer.Size(a.UpdatedAt)
	return size
}

type expertMUS struct{}

func (expertMUS) Marshal(e Expert, bs []byte) (n int) {
	n = IDMUS.Marshal(e.Id, bs)
	n += ord.String.Marshal(e.Name, bs[n:])
	n += ord.String.Marshal(e.Summary, bs[n:])
	n += ord.Bool.Marshal(e.Active, bs[n:])
	n += metadataSer.Marshal(e.Metadata, bs[n:])
	n += timeSer.Marshal(e.InsertedAt, bs[n:])
	n += timeSer.Marshal(e.UpdatedAt, bs[n:])
	return n
}

func (expertMUS) Unmarshal(bs []byte) (e Expert, n int, err error) {
	var n1 int
	e.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return e, n, err
	}
	e.Name, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return e, n, err
	}
	e.Summary, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return e, n, err
	}
	e.Active, n1, err = ord.Bool.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return e, n, err
	}
	e.Metadata, n1, err = metadataSer.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return e, n, err
	}
	e.InsertedAt, n1, err = timeSer.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return e, n, err
	}
	e.UpdatedAt, n1, err = timeSer.Unmarshal(bs[n:])
	n += n1
	return e, n, err
}

func (expertMUS) Size(e Expert) (size int) {
	size = IDMUS.Size(e.Id)
	size += ord.String.Size(e.Name)
	size += ord.String.Size(e.Summary)
	size += ord.Bool.Size(e.Active)
	size += metadataSer.Size(e.Metadata)
	size += timeSer.Size(e.InsertedAt)
	size += timeSer.Size(e.UpdatedAt)
	return size
}

type experienceMUS struct{}

func (experienceMUS) Marshal(e Experience, bs []byte) (n int) {
	n = IDMUS.Marshal(e.Id, bs)
	n += IDMUS.Marshal(e.ExpertId, bs[n:])
	n += ord.String.Marshal(e.Employer, bs[n:])
	n += ord.String.Marshal(e.Position, bs[n:])
	n += timeSer.Marshal(e.StartDate, bs[n:])
	n += timeSer.Marshal(e.EndDate, bs[n:])
	n += ord.String.Marshal(e.Summary, bs[n:])
	n += idSliceSer.Marshal(e.AttributeIds, bs[n:])
	n += timeSer.Marshal(e.InsertedAt, bs[n:])
	n += timeSer.Marshal(e.UpdatedAt, bs[n:])
	return n
}

func (experienceMUS) Unmarshal(bs []byte) (e Experience, n int, err error) {
	var n1 int
	e.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return e, n, err
	}
	e.ExpertId, n1, err = IDMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return e, n, err
	}
	e.Employer, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return e, n, err
	}
	e.Position, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return e, n, err
	}
	e.StartDate, n1, err = timeSer.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return e, n, err
	}
	e.EndDate, n1, err = timeSer.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return e, n, err
	}
	e.Summary, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return e, n, err
	}
	e.AttributeIds, n1, err = idSliceSer.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return e, n, err
	}
	e.InsertedAt, n1, err = timeSer.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return e, n, err
	}
	e.UpdatedAt, n1, err = timeSer.Unmarshal(bs[n:])
	n += n1
	return e, n, err
}

func (experienceMUS) Size(e Experience) (size int) {
	size = IDMUS.Size(e.Id)
	size += IDMUS.Size(e.ExpertId)
	size += ord.String.Size(e.Employer)
	size += ord.String.Size(e.Position)
	size += timeSer.Size(e.StartDate)
	size += timeSer.Size(e.EndDate)
	size += ord.String.Size(e.Summary)
	size += idSliceSer.Size(e.AttributeIds)
	size += timeSer.Size(e.InsertedAt)
	size += timeSer.Size(e.UpdatedAt)
	return size
}
