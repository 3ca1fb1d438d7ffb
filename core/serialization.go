package core

import (
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// MUS serializers for the persisted domain types. Written by hand against
// the mus-go primitive serializers; field order is the struct order and
// must not change without migrating stored data.
var (
	IDMUS       = idMUS{}
	DocumentMUS = documentMUS{}
	ArticleMUS  = articleMUS{}
	ChunkMUS    = chunkMUS{}

	vectorMUS = ord.NewSliceSer[float32](varint.Float32)
	timeMUS   = timeMicroMUS{}
)

type idMUS struct{}

func (idMUS) Marshal(v ID, bs []byte) int {
	return varint.Uint64.Marshal(uint64(v), bs)
}

func (idMUS) Unmarshal(bs []byte) (ID, int, error) {
	raw, n, err := varint.Uint64.Unmarshal(bs)
	return ID(raw), n, err
}

func (idMUS) Size(v ID) int {
	return varint.Uint64.Size(uint64(v))
}

// timeMicroMUS serializes timestamps as microseconds since the Unix epoch.
type timeMicroMUS struct{}

func (timeMicroMUS) Marshal(v time.Time, bs []byte) int {
	return varint.Int64.Marshal(v.UnixMicro(), bs)
}

func (timeMicroMUS) Unmarshal(bs []byte) (time.Time, int, error) {
	us, n, err := varint.Int64.Unmarshal(bs)
	if err != nil {
		return time.Time{}, n, err
	}
	return time.UnixMicro(us).UTC(), n, nil
}

func (timeMicroMUS) Size(v time.Time) int {
	return varint.Int64.Size(v.UnixMicro())
}

type documentMUS struct{}

func (documentMUS) Marshal(v Document, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += ord.String.Marshal(v.Name, bs[n:])
	n += ord.String.Marshal(v.Source, bs[n:])
	n += timeMUS.Marshal(v.InsertedAt, bs[n:])
	n += timeMUS.Marshal(v.UpdatedAt, bs[n:])
	return n
}

func (documentMUS) Unmarshal(bs []byte) (v Document, n int, err error) {
	var c int
	if v.Id, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	if v.Name, c, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + c, err
	}
	n += c
	if v.Source, c, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + c, err
	}
	n += c
	if v.InsertedAt, c, err = timeMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + c, err
	}
	n += c
	if v.UpdatedAt, c, err = timeMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + c, err
	}
	n += c
	return v, n, nil
}

func (documentMUS) Size(v Document) (size int) {
	size = IDMUS.Size(v.Id)
	size += ord.String.Size(v.Name)
	size += ord.String.Size(v.Source)
	size += timeMUS.Size(v.InsertedAt)
	size += timeMUS.Size(v.UpdatedAt)
	return size
}

type articleMUS struct{}

func (articleMUS) Marshal(v Article, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += IDMUS.Marshal(v.DocumentId, bs[n:])
	n += varint.PositiveInt.Marshal(v.Seq, bs[n:])
	n += ord.String.Marshal(v.Theme, bs[n:])
	n += ord.String.Marshal(v.Label, bs[n:])
	n += ord.String.Marshal(v.SubTheme, bs[n:])
	n += ord.String.Marshal(v.Content, bs[n:])
	n += timeMUS.Marshal(v.InsertedAt, bs[n:])
	n += timeMUS.Marshal(v.UpdatedAt, bs[n:])
	return n
}

func (articleMUS) Unmarshal(bs []byte) (v Article, n int, err error) {
	var c int
	if v.Id, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	if v.DocumentId, c, err = IDMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + c, err
	}
	n += c
	if v.Seq, c, err = varint.PositiveInt.Unmarshal(bs[n:]); err != nil {
		return v, n + c, err
	}
	n += c
	if v.Theme, c, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + c, err
	}
	n += c
	if v.Label, c, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + c, err
	}
	n += c
	if v.SubTheme, c, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + c, err
	}
	n += c
	if v.Content, c, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + c, err
	}
	n += c
	if v.InsertedAt, c, err = timeMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + c, err
	}
	n += c
	if v.UpdatedAt, c, err = timeMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + c, err
	}
	n += c
	return v, n, nil
}

func (articleMUS) Size(v Article) (size int) {
	size = IDMUS.Size(v.Id)
	size += IDMUS.Size(v.DocumentId)
	size += varint.PositiveInt.Size(v.Seq)
	size += ord.String.Size(v.Theme)
	size += ord.String.Size(v.Label)
	size += ord.String.Size(v.SubTheme)
	size += ord.String.Size(v.Content)
	size += timeMUS.Size(v.InsertedAt)
	size += timeMUS.Size(v.UpdatedAt)
	return size
}

type chunkMUS struct{}

func (chunkMUS) Marshal(v Chunk, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += IDMUS.Marshal(v.ArticleId, bs[n:])
	n += IDMUS.Marshal(v.DocumentId, bs[n:])
	n += varint.PositiveInt.Marshal(v.Seq, bs[n:])
	n += ord.String.Marshal(v.Text, bs[n:])
	n += vectorMUS.Marshal(v.Vector, bs[n:])
	n += timeMUS.Marshal(v.InsertedAt, bs[n:])
	n += timeMUS.Marshal(v.UpdatedAt, bs[n:])
	return n
}

func (chunkMUS) Unmarshal(bs []byte) (v Chunk, n int, err error) {
	var c int
	if v.Id, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	if v.ArticleId, c, err = IDMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + c, err
	}
	n += c
	if v.DocumentId, c, err = IDMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + c, err
	}
	n += c
	if v.Seq, c, err = varint.PositiveInt.Unmarshal(bs[n:]); err != nil {
		return v, n + c, err
	}
	n += c
	if v.Text, c, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + c, err
	}
	n += c
	if v.Vector, c, err = vectorMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + c, err
	}
	n += c
	if v.InsertedAt, c, err = timeMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + c, err
	}
	n += c
	if v.UpdatedAt, c, err = timeMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + c, err
	}
	n += c
	return v, n, nil
}

func (chunkMUS) Size(v Chunk) (size int) {
	size = IDMUS.Size(v.Id)
	size += IDMUS.Size(v.ArticleId)
	size += IDMUS.Size(v.DocumentId)
	size += varint.PositiveInt.Size(v.Seq)
	size += ord.String.Size(v.Text)
	size += vectorMUS.Size(v.Vector)
	size += timeMUS.Size(v.InsertedAt)
	size += timeMUS.Size(v.UpdatedAt)
	return size
}
