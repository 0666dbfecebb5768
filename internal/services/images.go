package services

import "strings"

// PlaceholderImage é a imagem usada quando o cadastro não traz arquivo.
const PlaceholderImage = "https://images.unsplash.com/photo-1584680226833-0d680d0a0794?ixid=MXwxMjA3fDB8MHxwaG90by1wYWdlfHx8fGVufDB8fHw%3D&ixlib=rb-1.2.1&auto=format&fit=crop&w=400&q=60"

// ImageURL resolve o nome de arquivo gravado em uploads para uma URL pública.
// Imagens que já são URLs absolutas (o placeholder) passam direto.
func ImageURL(baseURL, image string) string {
	if image == "" {
		return ""
	}
	if strings.HasPrefix(image, "http://") || strings.HasPrefix(image, "https://") {
		return image
	}
	return strings.TrimRight(baseURL, "/") + "/uploads/" + image
}
