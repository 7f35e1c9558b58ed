package event

import "context"

type metaKey struct{}

// WithMeta 하위 호출(배송 훅 등)에서 같은 태그로 이벤트를 이어서 발생시킬 수 있도록 ctx에 Meta를 담습니다.
func WithMeta(ctx context.Context, m Meta) context.Context {
	return context.WithValue(ctx, metaKey{}, m)
}

// MetaFrom ctx에 담긴 Meta를 반환합니다. 없으면 새 태그를 발급합니다.
func MetaFrom(ctx context.Context) Meta {
	if m, ok := ctx.Value(metaKey{}).(Meta); ok && m.Tag != "" {
		return m
	}
	return NewMeta()
}
