package handlers

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"

	"github.com/NightSight1044/legalCRM1/services"

	"github.com/labstack/echo/v4"
)

// ListDocumentsHandler lists the firm's documents
// GET /api/documents?type=contract&case_id=...&client_id=...&templates=true
func ListDocumentsHandler(c echo.Context) error {
	t, err := tenant(c)
	if err != nil {
		return err
	}
	docs, err := services.ListDocuments(c.Request().Context(), t, services.DocumentFilters{
		Type:          c.QueryParam("type"),
		CaseID:        c.QueryParam("case_id"),
		ClientID:      c.QueryParam("client_id"),
		TemplatesOnly: c.QueryParam("templates") == "true",
	})
	if err != nil {
		return toHTTPError(c, err)
	}
	return c.JSON(http.StatusOK, docs)
}

// DocumentStatsHandler returns the document counters
// GET /api/documents/stats
func DocumentStatsHandler(c echo.Context) error {
	t, err := tenant(c)
	if err != nil {
		return err
	}
	stats, err := services.GetDocumentStats(c.Request().Context(), t)
	if err != nil {
		return toHTTPError(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}

// CreateDocumentHandler registers document metadata. Content is uploaded
// separately.
// POST /api/documents
func CreateDocumentHandler(c echo.Context) error {
	t, err := tenant(c)
	if err != nil {
		return err
	}
	var in services.DocumentInput
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	doc, err := services.CreateDocument(c.Request().Context(), t, in, nil)
	if err != nil {
		return toHTTPError(c, err)
	}
	return c.JSON(http.StatusCreated, doc)
}

// GetDocumentHandler returns a document
// GET /api/documents/:id
func GetDocumentHandler(c echo.Context) error {
	t, err := tenant(c)
	if err != nil {
		return err
	}
	doc, err := services.GetDocument(c.Request().Context(), t, c.Param("id"))
	if err != nil {
		return toHTTPError(c, err)
	}
	return c.JSON(http.StatusOK, doc)
}

// UpdateDocumentHandler edits document metadata; the version is unchanged
// PUT /api/documents/:id
func UpdateDocumentHandler(c echo.Context) error {
	t, err := tenant(c)
	if err != nil {
		return err
	}
	var in services.DocumentInput
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	doc, err := services.UpdateDocument(c.Request().Context(), t, c.Param("id"), in)
	if err != nil {
		return toHTTPError(c, err)
	}
	return c.JSON(http.StatusOK, doc)
}

// DeleteDocumentHandler removes a document record
// DELETE /api/documents/:id
func DeleteDocumentHandler(c echo.Context) error {
	t, err := tenant(c)
	if err != nil {
		return err
	}
	if err := services.DeleteDocument(c.Request().Context(), t, c.Param("id")); err != nil {
		return toHTTPError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// UploadDocumentContentHandler replaces a document's content and bumps its
// version
// PUT /api/documents/:id/content (multipart, field "file")
func UploadDocumentContentHandler(c echo.Context) error {
	t, err := tenant(c)
	if err != nil {
		return err
	}

	file, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "No file uploaded")
	}
	src, err := file.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to read upload")
	}
	defer src.Close()

	doc, err := services.UploadDocumentContent(c.Request().Context(), t, services.Storage,
		c.Param("id"), file.Filename, file.Size, src)
	if err != nil {
		return toHTTPError(c, err)
	}
	return c.JSON(http.StatusOK, doc)
}

// DownloadDocumentHandler streams the current content of a document
// GET /api/documents/:id/content
func DownloadDocumentHandler(c echo.Context) error {
	t, err := tenant(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	doc, err := services.GetDocument(ctx, t, c.Param("id"))
	if err != nil {
		return toHTTPError(c, err)
	}
	if doc.FileKey == "" {
		return echo.NewHTTPError(http.StatusNotFound, "Document has no content")
	}

	reader, contentType, err := services.Storage.Get(ctx, doc.FileKey)
	if err != nil {
		return toHTTPError(c, fmt.Errorf("failed to open document content: %w", err))
	}
	defer reader.Close()

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=%q", doc.Name+filepath.Ext(doc.FileKey)))
	if contentType == "" {
		contentType = echo.MIMEOctetStream
	}
	c.Response().Header().Set(echo.HeaderContentType, contentType)
	c.Response().WriteHeader(http.StatusOK)
	_, err = io.Copy(c.Response(), reader)
	return err
}
