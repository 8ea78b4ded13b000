// Package storage manages the local scratch file that holds downloaded media
// between the download step and the record store upload.
//
// Writes go to a temporary sibling file and are renamed into place, so a
// reader never sees a half-written video and a failed download never
// clobbers the previous run's file.
//
//	scratch, err := storage.NewScratch("./latest_tiktok.mp4")
//	if err != nil {
//	    return err
//	}
//	n, err := scratch.Save(resp.Body)
//
// The scratch path is not unique per run: two concurrent runs sharing a path
// would race on it.
package storage
