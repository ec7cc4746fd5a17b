package render

import "context"

type Renderer interface {
	RenderHome(ctx context.Context, page HomePage) ([]byte, error)
	RenderAbout(ctx context.Context, page AboutPage) ([]byte, error)
	RenderBlog(ctx context.Context, page BlogPage) ([]byte, error)
	RenderPost(ctx context.Context, page PostPage) ([]byte, error)
	RenderList(ctx context.Context, page ListPage) ([]byte, error)
	RenderTags(ctx context.Context, page TagsPage) ([]byte, error)
	RenderCategories(ctx context.Context, page CategoriesPage) ([]byte, error)
	RenderNotFound(ctx context.Context, page NotFoundPage) ([]byte, error)
}
