package core

import (
	"github.com/mus-format/mus-go"
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// MUS serializers for the types persisted by the storage layer.
// Hand-written compositions of mus-go primitives; field order is part of the
// on-disk format and must not change without a migration.

var (
	IDMUS           = idSer{}
	EntityMUS       = entitySer{}
	RelationshipMUS = relationshipSer{}
	PassageMUS      = passageSer{}

	propsMUS  = ord.NewMapSer[string, string](ord.String, ord.String)
	vectorMUS = ord.NewSliceSer[float32](raw.Float32)
	timeMUS   = raw.TimeUnixMicro
)

var (
	_ mus.Serializer[ID]           = IDMUS
	_ mus.Serializer[Entity]       = EntityMUS
	_ mus.Serializer[Relationship] = RelationshipMUS
	_ mus.Serializer[Passage]      = PassageMUS
)

type idSer struct{}

func (idSer) Marshal(id ID, bs []byte) (n int) {
	return varint.Uint64.Marshal(uint64(id), bs)
}

func (idSer) Unmarshal(bs []byte) (id ID, n int, err error) {
	v, n, err := varint.Uint64.Unmarshal(bs)
	return ID(v), n, err
}

func (idSer) Size(id ID) int {
	return varint.Uint64.Size(uint64(id))
}

func (idSer) Skip(bs []byte) (n int, err error) {
	return varint.Uint64.Skip(bs)
}

type entitySer struct{}

func (entitySer) Marshal(e Entity, bs []byte) (n int) {
	n = IDMUS.Marshal(e.Id, bs)
	n += ord.String.Marshal(e.Type, bs[n:])
	n += ord.String.Marshal(e.Name, bs[n:])
	n += propsMUS.Marshal(e.Props, bs[n:])
	n += timeMUS.Marshal(e.InsertedAt, bs[n:])
	n += timeMUS.Marshal(e.UpdatedAt, bs[n:])
	return n
}

func (entitySer) Unmarshal(bs []byte) (e Entity, n int, err error) {
	var n1 int
	if e.Id, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	if e.Type, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return e, n + n1, err
	}
	n += n1
	if e.Name, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return e, n + n1, err
	}
	n += n1
	if e.Props, n1, err = propsMUS.Unmarshal(bs[n:]); err != nil {
		return e, n + n1, err
	}
	n += n1
	if e.InsertedAt, n1, err = timeMUS.Unmarshal(bs[n:]); err != nil {
		return e, n + n1, err
	}
	n += n1
	e.UpdatedAt, n1, err = timeMUS.Unmarshal(bs[n:])
	n += n1
	return e, n, err
}

func (entitySer) Size(e Entity) (size int) {
	size = IDMUS.Size(e.Id)
	size += ord.String.Size(e.Type)
	size += ord.String.Size(e.Name)
	size += propsMUS.Size(e.Props)
	size += timeMUS.Size(e.InsertedAt)
	size += timeMUS.Size(e.UpdatedAt)
	return size
}

func (s entitySer) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return n, err
}

type relationshipSer struct{}

func (relationshipSer) Marshal(r Relationship, bs []byte) (n int) {
	n = IDMUS.Marshal(r.Id, bs)
	n += ord.String.Marshal(r.Type, bs[n:])
	n += IDMUS.Marshal(r.FromId, bs[n:])
	n += IDMUS.Marshal(r.ToId, bs[n:])
	n += propsMUS.Marshal(r.Props, bs[n:])
	n += timeMUS.Marshal(r.InsertedAt, bs[n:])
	return n
}

func (relationshipSer) Unmarshal(bs []byte) (r Relationship, n int, err error) {
	var n1 int
	if r.Id, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	if r.Type, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return r, n + n1, err
	}
	n += n1
	if r.FromId, n1, err = IDMUS.Unmarshal(bs[n:]); err != nil {
		return r, n + n1, err
	}
	n += n1
	if r.ToId, n1, err = IDMUS.Unmarshal(bs[n:]); err != nil {
		return r, n + n1, err
	}
	n += n1
	if r.Props, n1, err = propsMUS.Unmarshal(bs[n:]); err != nil {
		return r, n + n1, err
	}
	n += n1
	r.InsertedAt, n1, err = timeMUS.Unmarshal(bs[n:])
	n += n1
	return r, n, err
}

func (relationshipSer) Size(r Relationship) (size int) {
	size = IDMUS.Size(r.Id)
	size += ord.String.Size(r.Type)
	size += IDMUS.Size(r.FromId)
	size += IDMUS.Size(r.ToId)
	size += propsMUS.Size(r.Props)
	size += timeMUS.Size(r.InsertedAt)
	return size
}

func (s relationshipSer) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return n, err
}

type passageSer struct{}

func (passageSer) Marshal(p Passage, bs []byte) (n int) {
	n = IDMUS.Marshal(p.Id, bs)
	n += ord.String.Marshal(p.VideoID, bs[n:])
	n += ord.String.Marshal(p.Podcast, bs[n:])
	n += ord.String.Marshal(p.Episode, bs[n:])
	n += ord.String.Marshal(p.Speaker, bs[n:])
	n += ord.String.Marshal(p.Text, bs[n:])
	n += raw.Float64.Marshal(p.StartTime, bs[n:])
	n += raw.Float64.Marshal(p.EndTime, bs[n:])
	n += ord.String.Marshal(p.PublishDate, bs[n:])
	n += vectorMUS.Marshal(p.Vector, bs[n:])
	n += timeMUS.Marshal(p.InsertedAt, bs[n:])
	n += timeMUS.Marshal(p.UpdatedAt, bs[n:])
	return n
}

func (passageSer) Unmarshal(bs []byte) (p Passage, n int, err error) {
	var n1 int
	if p.Id, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	strs := []*string{&p.VideoID, &p.Podcast, &p.Episode, &p.Speaker, &p.Text}
	for _, s := range strs {
		if *s, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
			return p, n + n1, err
		}
		n += n1
	}
	if p.StartTime, n1, err = raw.Float64.Unmarshal(bs[n:]); err != nil {
		return p, n + n1, err
	}
	n += n1
	if p.EndTime, n1, err = raw.Float64.Unmarshal(bs[n:]); err != nil {
		return p, n + n1, err
	}
	n += n1
	if p.PublishDate, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return p, n + n1, err
	}
	n += n1
	if p.Vector, n1, err = vectorMUS.Unmarshal(bs[n:]); err != nil {
		return p, n + n1, err
	}
	n += n1
	if p.InsertedAt, n1, err = timeMUS.Unmarshal(bs[n:]); err != nil {
		return p, n + n1, err
	}
	n += n1
	p.UpdatedAt, n1, err = timeMUS.Unmarshal(bs[n:])
	n += n1
	return p, n, err
}

func (passageSer) Size(p Passage) (size int) {
	size = IDMUS.Size(p.Id)
	size += ord.String.Size(p.VideoID)
	size += ord.String.Size(p.Podcast)
	size += ord.String.Size(p.Episode)
	size += ord.String.Size(p.Speaker)
	size += ord.String.Size(p.Text)
	size += raw.Float64.Size(p.StartTime)
	size += raw.Float64.Size(p.EndTime)
	size += ord.String.Size(p.PublishDate)
	size += vectorMUS.Size(p.Vector)
	size += timeMUS.Size(p.InsertedAt)
	size += timeMUS.Size(p.UpdatedAt)
	return size
}

func (s passageSer) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return n, err
}
