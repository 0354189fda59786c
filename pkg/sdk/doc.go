// Package cinematch embeds the movie recommender in a Go program without
// running the HTTP server.
//
//	client, _ := cinematch.New(ctx,
//	    cinematch.WithCatalogFile("data/catalog.json.gz"),
//	    cinematch.WithOMDb(os.Getenv("OMDB_API_KEY")),
//	)
//	defer client.Close()
//
//	recs, _ := client.Recommend(ctx, "The Dark Knight")
//	for _, r := range recs {
//	    fmt.Println(r.Title, r.Rating, r.Poster)
//	}
//
// Without an OMDb key recommendations still work: every poster is the
// placeholder and every rating is 0, so the list keeps similarity order.
package cinematch
