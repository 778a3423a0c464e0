package server

import (
	"fmt"

	"resumelens/internal/utils"
)

// displayServerInfo shows server configuration information
func (s *Server) displayServerInfo() {
	fmt.Println("Available endpoints:")
	fmt.Println("  GET  /          - Upload page")
	fmt.Println("  GET  /health    - Health check")
	fmt.Println("  GET  /stats     - Server statistics")
	fmt.Println("  POST /analyze   - Analyze a resume (multipart field 'resume')")

	if s.MaxRequestSize > 0 {
		fmt.Printf("Upload size limit: %s\n", utils.FormatFileSize(s.MaxRequestSize))
	} else {
		fmt.Println("Upload size limit: DISABLED")
		fmt.Println("WARNING: No request size limits configured!")
	}
	fmt.Printf("Allowed extensions: %v\n", s.AllowedExtensions)
}
