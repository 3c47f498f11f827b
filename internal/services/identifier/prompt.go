package identifier

import "google.golang.org/genai"

const identifyPrompt = `Eres un experto en biología de campo. Identifica la especie de flora o fauna que aparece en la imagen.
Responde SOLO con JSON estricto, en español, con exactamente estos campos:
{
  "nombre_comun": string,         // nombre común más usado
  "nombre_cientifico": string,    // género y especie
  "habitat": string,              // hábitat natural, una frase
  "estado_conservacion": string   // categoría de la Lista Roja de la UICN
}
Si no hay ningún ser vivo reconocible, usa "Desconocido" en todos los campos.`

var resultFields = []string{"nombre_comun", "nombre_cientifico", "habitat", "estado_conservacion"}

func resultSchema() *genai.Schema {
	props := make(map[string]*genai.Schema, len(resultFields))
	for _, field := range resultFields {
		props[field] = &genai.Schema{Type: genai.TypeString}
	}
	return &genai.Schema{
		Type:             genai.TypeObject,
		Properties:       props,
		Required:         resultFields,
		PropertyOrdering: resultFields,
	}
}
