package spec

// petstoreYAML exercises path-level parameters, a JSON body, a named
// response type and an optional parameter declared before a required one.
const petstoreYAML = `openapi: 3.0.3
info:
  title: Pet Store
  version: 1.0.0
  description: A sample pet store
components:
  securitySchemes:
    oauth:
      type: oauth2
      flows: {}
    apiKeyAuth:
      type: apiKey
      in: header
      name: X-API-Key
  schemas:
    Pet:
      type: object
      required: [id]
      properties:
        id: {type: integer}
        name: {type: string}
        owner: {$ref: '#/components/schemas/Owner'}
    Owner:
      type: object
      properties:
        pets:
          type: array
          items: {$ref: '#/components/schemas/Pet'}
    PetAlias:
      $ref: '#/components/schemas/Pet'
paths:
  /pets/{id}:
    parameters:
      - name: id
        in: path
        schema: {type: integer}
    get:
      operationId: getPet
      summary: Get a pet
      parameters:
        - name: verbose
          in: query
          schema: {type: boolean}
      responses:
        200:
          description: ok
          content:
            application/json:
              schema: {$ref: '#/components/schemas/Pet'}
  /pets:
    post:
      operationId: createPet
      tags: [write]
      parameters:
        - name: X-Request-ID
          in: header
          schema: {type: string}
        - name: dry-run
          in: query
          required: false
          schema: {type: boolean}
        - name: store
          in: query
          required: true
          schema: {type: string}
      requestBody:
        required: true
        content:
          application/json:
            schema:
              type: object
              required: [name]
              properties:
                name: {type: string}
                tags:
                  type: array
                  items: {type: string}
      responses:
        '201':
          description: created
          content:
            application/json:
              schema: {$ref: '#/components/schemas/PetAlias'}
    get:
      tags: [read]
      responses:
        '200':
          description: ok
          content:
            application/json:
              schema:
                type: array
                items: {$ref: '#/components/schemas/Pet'}
`

const swaggerYAML = `swagger: "2.0"
info:
  title: Legacy Pets
  version: "1.0"
host: api.example.com
basePath: /v1
schemes: [https]
consumes: [application/json]
produces: [application/json]
securityDefinitions:
  key:
    type: apiKey
    name: X-API-Key
    in: header
paths:
  /pets/{id}:
    get:
      operationId: getPet
      parameters:
        - name: id
          in: path
          required: true
          type: integer
        - name: verbose
          in: query
          type: boolean
      responses:
        "200":
          description: ok
          schema:
            $ref: "#/definitions/Pet"
definitions:
  Pet:
    type: object
    properties:
      id:
        type: integer
      name:
        type: string
`
