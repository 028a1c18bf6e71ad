package feed

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/dmorgan81/headshots/internal/log"
	"github.com/gorilla/feeds"
	"github.com/samber/do"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

const pageSuffix = "/index.html"

type objectLister interface {
	s3.ListObjectsV2APIClient
	HeadObject(context.Context, *s3.HeadObjectInput, ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

type Generator struct {
	client  objectLister
	bucket  string
	siteURL string
	now     func() time.Time
}

func NewS3Generator(i *do.Injector) (*Generator, error) {
	return &Generator{
		client:  do.MustInvoke[*s3.Client](i),
		bucket:  do.MustInvokeNamed[string](i, "bucket"),
		siteURL: strings.TrimSuffix(do.MustInvokeNamed[string](i, "site_url"), "/"),
		now:     time.Now,
	}, nil
}

// Generate builds an RSS feed with one item per stored batch page.
func (g *Generator) Generate(ctx context.Context) ([]byte, error) {
	log := log.FromContextOrDiscard(ctx).WithGroup("feed")
	log.Info("generating rss feed")

	feed := feeds.Feed{
		Title:       "Headshots",
		Description: "AI generated professional headshots",
		Link:        &feeds.Link{Href: g.siteURL},
		Updated:     g.now(),
	}

	pager := s3.NewListObjectsV2Paginator(g.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(g.bucket),
	})

	var mu sync.Mutex
	group, ctx := errgroup.WithContext(ctx)
	for pager.HasMorePages() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			_ = group.Wait()
			return nil, err
		}

		objs := lo.Filter(page.Contents, func(o s3types.Object, _ int) bool {
			return strings.HasSuffix(aws.ToString(o.Key), pageSuffix)
		})

		for _, obj := range objs {
			obj := obj
			group.Go(func() error {
				out, err := g.client.HeadObject(ctx, &s3.HeadObjectInput{
					Bucket: aws.String(g.bucket),
					Key:    obj.Key,
				})
				if err != nil {
					return err
				}

				item := g.item(aws.ToString(obj.Key), out)
				mu.Lock()
				defer mu.Unlock()
				feed.Add(item)
				return nil
			})
		}
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}
	log.Info("collected batches", "count", len(feed.Items))

	feed.Sort(func(a, b *feeds.Item) bool {
		return a.Updated.After(b.Updated)
	})
	rss, err := feed.ToRss()
	return []byte(rss), err
}

func (g *Generator) item(key string, out *s3.HeadObjectOutput) *feeds.Item {
	meta := out.Metadata
	id := lo.Ternary(meta["batch"] != "", meta["batch"], strings.TrimSuffix(key, pageSuffix))
	return &feeds.Item{
		Id:          id,
		Title:       fmt.Sprintf("Batch %s: %s of %s styles", id, lo.CoalesceOrEmpty(meta["succeeded"], "?"), lo.CoalesceOrEmpty(meta["total"], "?")),
		Description: fmt.Sprintf("%s failed", lo.CoalesceOrEmpty(meta["failed"], "0")),
		Link:        &feeds.Link{Href: g.siteURL + "/" + key},
		Updated:     aws.ToTime(out.LastModified),
	}
}
