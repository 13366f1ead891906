package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/kotirearend/giglog/internal/filex"
	"github.com/kotirearend/giglog/internal/netx"
)

// photoDir is where downloaded photos land, relative to the working directory.
const photoDir = "photos"

// AttachPhoto uploads a local file to object storage and records its key on
// the gig. The bytes go straight to the presigned URL; only the key travels
// through the sync queue.
func (a *App) AttachPhoto(ctx context.Context, id string, path string) error {
	if a.Mode != ModeOnline {
		fmt.Println("Photo upload needs a connection. Try 'sync' first.")
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		log.Println(err.Error())
		return err
	}

	key, uploadURL, err := a.photoGW.PhotoUploadURL(ctx)
	if err != nil {
		log.Println(err.Error())
		return err
	}
	if err := netx.UploadToS3PresignedURL(uploadURL, data); err != nil {
		log.Println(err.Error())
		return err
	}

	if _, err := a.gigService.AttachPhoto(ctx, id, key); err != nil {
		log.Println(err.Error())
		return err
	}
	fmt.Println("Photo attached.")
	return nil
}

// SavePhotos downloads every photo attached to the gig into ./photos.
func (a *App) SavePhotos(ctx context.Context, id string) error {
	if a.Mode != ModeOnline {
		fmt.Println("Photo download needs a connection. Try 'sync' first.")
		return nil
	}

	g, err := a.gigService.Get(ctx, id)
	if err != nil {
		log.Println(err.Error())
		return err
	}
	if len(g.PhotoIDs) == 0 {
		fmt.Println("No photos on this gig.")
		return nil
	}

	dir, err := filex.EnsureSubdDir(photoDir)
	if err != nil {
		log.Println(err.Error())
		return err
	}

	for i, key := range g.PhotoIDs {
		downloadURL, err := a.photoGW.PhotoDownloadURL(ctx, key)
		if err != nil {
			log.Println(err.Error())
			return err
		}
		data, err := netx.DownloadFromPresignedURL(downloadURL)
		if err != nil {
			log.Println(err.Error())
			return err
		}
		name := fmt.Sprintf("%s-%d.jpg", g.ID, i+1)
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o660); err != nil {
			log.Println(err.Error())
			return err
		}
	}
	fmt.Printf("Saved %d photo(s) to %s\n", len(g.PhotoIDs), dir)
	return nil
}
