package errors

import (
	stdErrors "errors"
	"testing"
)

func TestClassifyKind(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want Kind
	}{
		{
			name: "key not found",
			err:  NewKeyNotFoundError("missing"),
			want: KindKeyNotFound,
		},
		{
			name: "unexpected command type",
			err:  NewUnexpectedCommandTypeError("k", 3),
			want: KindUnexpectedCommandType,
		},
		{
			name: "decode failure",
			err:  NewDecodeError(stdErrors.New("unexpected EOF"), 2, 17),
			want: KindSerde,
		},
		{
			name: "encode failure",
			err:  NewEncodeError(stdErrors.New("write failed"), 1),
			want: KindSerde,
		},
		{
			name: "storage error falls back to IO",
			err:  NewStorageError(stdErrors.New("disk full"), ErrorCodeDiskFull, "failed to flush"),
			want: KindIO,
		},
		{
			name: "plain stdlib error falls back to IO",
			err:  stdErrors.New("boom"),
			want: KindIO,
		},
		{
			name: "wrapped key not found is still classified",
			err:  stdErrors.Join(stdErrors.New("remove failed"), NewKeyNotFoundError("k")),
			want: KindKeyNotFound,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ClassifyKind(tc.err); got != tc.want {
				t.Fatalf("ClassifyKind(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}
